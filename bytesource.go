package lsdict

import (
	"fmt"
	"io"
	"os"
)

// ByteSource is a byte-addressable read/seek/tell capability over a backing
// store. Implementations do no hidden buffering: every ReadSome reflects the
// current position exactly.
type ByteSource interface {
	// ReadSome copies up to len(p) bytes starting at the current position
	// into p and advances the position by the number of bytes copied.
	// Fewer bytes than requested — including zero at end-of-source — is a
	// short read, not an error. A non-nil error means the backing store
	// itself failed, never that the source merely ran out.
	ReadSome(p []byte) (int, error)

	// Seek sets the absolute byte position. Positions past the end are
	// legal; the bound is enforced lazily by subsequent short reads.
	Seek(pos int64)

	// Tell returns the current absolute byte position.
	Tell() int64
}

// MemorySource is a ByteSource over a fixed in-memory buffer. It backs
// decoded sub-blocks (an inflated overlay entry, an extracted index blob)
// and tests that don't need file I/O. The buffer is captured by reference,
// not copied.
type MemorySource struct {
	buf []byte
	pos int64
}

// NewMemorySource returns a MemorySource positioned at byte 0 of buf.
func NewMemorySource(buf []byte) *MemorySource {
	return &MemorySource{buf: buf}
}

func (m *MemorySource) ReadSome(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, nil
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemorySource) Seek(pos int64) {
	if pos < 0 {
		pos = 0
	}
	m.pos = pos
}

func (m *MemorySource) Tell() int64 { return m.pos }

// FileSource is a ByteSource over an operating-system file. Reads go
// through ReadAt, so the OS file offset is never relied on and two sources
// must still not share one handle. A FileSource is exclusively owned by the
// stream wrapping it.
type FileSource struct {
	f    *os.File
	pos  int64
	size int64
}

// OpenFile opens path for reading. A missing or unreadable file fails here,
// at construction, rather than surfacing later as an empty stream.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening byte source: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening byte source: %w", err)
	}
	return &FileSource{f: f, size: st.Size()}, nil
}

func (s *FileSource) ReadSome(p []byte) (int, error) {
	if s.pos >= s.size || len(p) == 0 {
		return 0, nil
	}
	if rest := s.size - s.pos; int64(len(p)) > rest {
		p = p[:rest]
	}
	n, err := s.f.ReadAt(p, s.pos)
	if err == io.EOF {
		err = nil
	}
	s.pos += int64(n)
	return n, err
}

func (s *FileSource) Seek(pos int64) {
	if pos < 0 {
		pos = 0
	}
	s.pos = pos
}

func (s *FileSource) Tell() int64 { return s.pos }

// Size returns the file length in bytes.
func (s *FileSource) Size() int64 { return s.size }

// Close releases the underlying file handle.
func (s *FileSource) Close() error { return s.f.Close() }
