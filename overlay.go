package lsdict

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Input sanity limits. Real containers carry overlay entries of at most a
// few megabytes (icons, annotation media); the caps prevent OOM allocations
// from a corrupted or hostile directory.
const (
	maxOverlayHeadings = 1 << 16   // 65536 embedded files
	maxOverlaySize     = 256 << 20 // 256 MB per entry, inflated or stored
)

// OverlayHeading describes one file embedded in the container's overlay
// area: a display name plus the location and sizes of its deflated payload.
type OverlayHeading struct {
	Name         string
	Offset       uint32 // relative to the overlay data area
	Reserved     uint32 // present in every heading, meaning unknown
	InflatedSize uint32
	StreamSize   uint32 // deflated size as stored
}

// ReadOverlayHeadings decodes the overlay directory: a uint32 count at the
// overlay headings offset, then per entry an 8-bit name length, the UTF-16
// name, and four uint32 fields. Entries with a zero inflated size are
// placeholders and are dropped.
func (d *Dict) ReadOverlayHeadings() ([]OverlayHeading, error) {
	bs := d.Stream
	bs.Seek(int64(d.Header.OverlayHeadingsOffset))

	count, err := readUint32(bs)
	if err != nil {
		return nil, fmt.Errorf("overlay directory: count: %w", err)
	}
	if count > maxOverlayHeadings {
		return nil, fmt.Errorf("overlay directory: implausible heading count %d", count)
	}

	var entries []OverlayHeading
	for i := uint32(0); i < count; i++ {
		nameLen, err := bs.Read(8)
		if err != nil {
			return nil, fmt.Errorf("overlay heading %d: name length: %w", i, err)
		}
		var h OverlayHeading
		h.Name, err = ReadUTF16String(bs, int(nameLen))
		if err != nil {
			return nil, fmt.Errorf("overlay heading %d: name: %w", i, err)
		}
		if h.Offset, err = readUint32(bs); err != nil {
			return nil, fmt.Errorf("overlay heading %d (%q): offset: %w", i, h.Name, err)
		}
		if h.Reserved, err = readUint32(bs); err != nil {
			return nil, fmt.Errorf("overlay heading %d (%q): reserved: %w", i, h.Name, err)
		}
		if h.InflatedSize, err = readUint32(bs); err != nil {
			return nil, fmt.Errorf("overlay heading %d (%q): inflated size: %w", i, h.Name, err)
		}
		if h.StreamSize, err = readUint32(bs); err != nil {
			return nil, fmt.Errorf("overlay heading %d (%q): stream size: %w", i, h.Name, err)
		}
		if h.InflatedSize != 0 {
			entries = append(entries, h)
		}
	}
	return entries, nil
}

// ReadOverlayEntry extracts and inflates one overlay payload.
func (d *Dict) ReadOverlayEntry(h OverlayHeading) ([]byte, error) {
	if h.StreamSize > maxOverlaySize || h.InflatedSize > maxOverlaySize {
		return nil, fmt.Errorf("overlay entry %q: implausible size (stored %d, inflated %d)",
			h.Name, h.StreamSize, h.InflatedSize)
	}
	bs := d.Stream
	bs.Seek(int64(d.Header.OverlayDataOffset) + int64(h.Offset))

	stored := make([]byte, h.StreamSize)
	n, err := bs.ReadSome(stored)
	if err != nil {
		return nil, fmt.Errorf("overlay entry %q: %w", h.Name, err)
	}
	if n != len(stored) {
		return nil, fmt.Errorf("overlay entry %q: truncated: need %d bytes, got %d",
			h.Name, len(stored), n)
	}

	out, err := inflate(stored, h.InflatedSize)
	if err != nil {
		return nil, fmt.Errorf("overlay entry %q: %w", h.Name, err)
	}
	return out, nil
}

// inflate zlib-decompresses buf and checks the result against the declared
// inflated size. A stream that inflates to any other length means the
// directory and the data area disagree.
func inflate(buf []byte, inflatedSize uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, int64(inflatedSize)+1))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	if uint32(len(out)) != inflatedSize {
		return nil, fmt.Errorf("zlib: inflated to %d bytes, expected %d", len(out), inflatedSize)
	}
	return out, nil
}
