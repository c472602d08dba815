// Package lsdict decodes LSD dictionary containers: a position-aware
// bit/byte cursor over a byte source, an optional XOR deobfuscation layer,
// and the container header and overlay (embedded files) directory built on
// top of them. Entry/article semantics are out of scope; this package only
// gets the bytes out correctly.
package lsdict

import (
	"encoding/binary"
	"fmt"
	"io"
)

// lsdMagic opens every container file.
const lsdMagic = "LingVo"

// Header layout, little-endian, from byte 0:
//
//	offset size field
//	0      6    magic "LingVo"
//	6      4    version (major in the high 16 bits)
//	10     4    entries count
//	14     2    source language code
//	16     2    target language code
//	18     4    overlay headings offset
//	22     4    overlay data offset
//	26     1    name length in UTF-16 code units
//	27     2×n  dictionary name, UTF-16LE
type Header struct {
	Version               uint32
	EntriesCount          uint32
	SourceLanguage        uint16
	TargetLanguage        uint16
	OverlayHeadingsOffset uint32
	OverlayDataOffset     uint32
	Name                  string
}

// MajorVersion extracts the format major version from the version word.
func (h *Header) MajorVersion() uint16 { return uint16(h.Version >> 16) }

// DecodeHeader decodes the container header from bit position 0 of bs.
// Truncated input is reported, with the failing field named — a short
// source is never silently decoded as an empty header.
func DecodeHeader(bs *BitStream) (*Header, error) {
	bs.Seek(0)

	magic := make([]byte, len(lsdMagic))
	n, err := bs.ReadSome(magic)
	if err != nil {
		return nil, fmt.Errorf("header: magic: %w", err)
	}
	if n != len(magic) || string(magic) != lsdMagic {
		return nil, fmt.Errorf("header: missing %s magic: %q", lsdMagic, magic[:n])
	}

	var h Header
	if h.Version, err = readUint32(bs); err != nil {
		return nil, fmt.Errorf("header: version: %w", err)
	}
	if h.EntriesCount, err = readUint32(bs); err != nil {
		return nil, fmt.Errorf("header: entries count: %w", err)
	}
	if h.SourceLanguage, err = readUint16(bs); err != nil {
		return nil, fmt.Errorf("header: source language: %w", err)
	}
	if h.TargetLanguage, err = readUint16(bs); err != nil {
		return nil, fmt.Errorf("header: target language: %w", err)
	}
	if h.OverlayHeadingsOffset, err = readUint32(bs); err != nil {
		return nil, fmt.Errorf("header: overlay headings offset: %w", err)
	}
	if h.OverlayDataOffset, err = readUint32(bs); err != nil {
		return nil, fmt.Errorf("header: overlay data offset: %w", err)
	}

	nameLen, err := bs.Read(8)
	if err != nil {
		return nil, fmt.Errorf("header: name length: %w", err)
	}
	h.Name, err = ReadUTF16String(bs, int(nameLen))
	if err != nil {
		return nil, fmt.Errorf("header: name: %w", err)
	}
	return &h, nil
}

// readUint32 reads a little-endian uint32 at the current (byte-aligned)
// stream position. A short source yields io.ErrUnexpectedEOF; callers wrap
// it with the field being decoded.
func readUint32(bs *BitStream) (uint32, error) {
	var b [4]byte
	n, err := bs.ReadSome(b[:])
	if err != nil {
		return 0, err
	}
	if n != len(b) {
		return 0, io.ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint16(bs *BitStream) (uint16, error) {
	var b [2]byte
	n, err := bs.ReadSome(b[:])
	if err != nil {
		return 0, err
	}
	if n != len(b) {
		return 0, io.ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// Dict bundles a container's bit stream with its decoded header. The
// stream is exclusively owned: one Dict, one decode operation at a time.
type Dict struct {
	Stream *BitStream
	Header *Header
	src    io.Closer // non-nil when the Dict owns a file handle
}

// NewDict decodes the container header from bs and returns a Dict over it.
// Use Open or OpenObfuscated for file-backed containers; NewDict serves
// containers already held in memory.
func NewDict(bs *BitStream) (*Dict, error) {
	h, err := DecodeHeader(bs)
	if err != nil {
		return nil, err
	}
	return &Dict{Stream: bs, Header: h}, nil
}

// Open opens a plain (unobfuscated) container file and decodes its header.
func Open(path string) (*Dict, error) {
	return open(path, nil)
}

// OpenObfuscated opens a container whose bytes are XOR-obfuscated with the
// given key derivation.
func OpenObfuscated(path string, key KeyFunc) (*Dict, error) {
	return open(path, key)
}

func open(path string, key KeyFunc) (*Dict, error) {
	src, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	var bs *BitStream
	if key != nil {
		bs = NewXorBitStream(src, key)
	} else {
		bs = NewBitStream(src)
	}
	d, err := NewDict(bs)
	if err != nil {
		src.Close()
		return nil, err
	}
	d.src = src
	return d, nil
}

// Close releases the file handle backing an Open'd container. A Dict over
// an in-memory source has nothing to release.
func (d *Dict) Close() error {
	if d.src != nil {
		return d.src.Close()
	}
	return nil
}
