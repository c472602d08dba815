package lsdict

import (
	"fmt"
	"io"
)

// BitStream adapts a ByteSource into a bit-addressable reader. Arbitrary-
// width field reads, byte alignment, and whole-byte bulk reads all share a
// single absolute bit position, so decoders can mix packed bitfield headers
// with byte payload blocks without keeping two cursors. Bits are consumed
// MSB-first within each byte (bit 0 = most significant).
//
// A BitStream owns its source exclusively; nothing else may move the
// source's position while the stream is live. A BitStream is itself a
// ByteSource, so byte-oriented helpers accept either.
type BitStream struct {
	src    ByteSource
	bitPos int64

	// one-byte cache for bit extraction; curIdx is the byte position cur
	// was fetched from, valid only while curOK. Seek and ReadSome drop the
	// cache so reads after a jump re-derive everything from the new
	// absolute position.
	cur    byte
	curIdx int64
	curOK  bool
}

// NewBitStream wraps src in a bit cursor positioned at bit 0.
func NewBitStream(src ByteSource) *BitStream {
	return &BitStream{src: src}
}

// NewXorBitStream wraps src in a bit cursor that XOR-decodes every byte
// with key before any bit extraction. See XorSource for the keying
// contract.
func NewXorBitStream(src ByteSource, key KeyFunc) *BitStream {
	return NewBitStream(&XorSource{Src: src, Key: key})
}

// ReadBit returns the bit at the current bit position and advances by one.
// io.EOF is returned when the containing byte lies past the end of the
// source; the position is left unchanged in that case.
func (b *BitStream) ReadBit() (uint32, error) {
	idx := b.bitPos / 8
	if !b.curOK || b.curIdx != idx {
		if err := b.fetch(idx); err != nil {
			return 0, err
		}
	}
	bit := uint32(b.cur>>(7-uint(b.bitPos%8))) & 1
	b.bitPos++
	return bit, nil
}

// fetch loads the byte at byte position idx into the cache.
func (b *BitStream) fetch(idx int64) error {
	b.src.Seek(idx)
	var one [1]byte
	n, err := b.src.ReadSome(one[:])
	if err != nil {
		return err
	}
	if n == 0 {
		return io.EOF
	}
	b.cur, b.curIdx, b.curOK = one[0], idx, true
	return nil
}

// Read reads n bits, 1 ≤ n ≤ 32, and assembles them MSB-first:
// v = v<<1 | bit for each bit in stream order. A width outside [1,32] is a
// decoder bug, not a data error, and panics; malformed input can only ever
// surface as io.EOF.
func (b *BitStream) Read(n int) (uint32, error) {
	if n < 1 || n > 32 {
		panic(fmt.Sprintf("lsdict: bit field width %d out of range [1,32]", n))
	}
	var v uint32
	for i := 0; i < n; i++ {
		bit, err := b.ReadBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | bit
	}
	return v, nil
}

// AlignToByte advances the bit position to the next byte boundary,
// discarding any partial byte. No-op when already aligned.
func (b *BitStream) AlignToByte() {
	if r := b.bitPos % 8; r != 0 {
		b.bitPos += 8 - r
	}
}

// ReadSome copies up to len(p) whole bytes from the byte position implied
// by the current bit position and advances the bit position by 8 bits per
// byte read. Callers are expected to be byte-aligned (call AlignToByte
// first after bit reads); a mid-byte position is not realigned — the read
// starts at the containing byte.
func (b *BitStream) ReadSome(p []byte) (int, error) {
	b.src.Seek(b.bitPos / 8)
	n, err := b.src.ReadSome(p)
	b.bitPos += int64(n) * 8
	b.curOK = false
	return n, err
}

// Seek sets the bit position to byte position pos (coarse, byte-granular
// seek) and drops the cached byte, so the next read re-derives its state
// from the new absolute position.
func (b *BitStream) Seek(pos int64) {
	if pos < 0 {
		pos = 0
	}
	b.bitPos = pos * 8
	b.curOK = false
}

// Tell reports the position at byte granularity: the bit position floored
// to its containing byte. Callers that need bit-exact positions track them
// through their own read accounting.
func (b *BitStream) Tell() int64 { return b.bitPos / 8 }
