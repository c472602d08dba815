package lsdict

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStream(buf []byte) *BitStream {
	return NewBitStream(NewMemorySource(buf))
}

// TestReadBitMSBFirst verifies bits come out MSB-first: the first four bits
// of 0b10110010 are 1,0,1,1.
func TestReadBitMSBFirst(t *testing.T) {
	bs := newTestStream([]byte{0b10110010})
	for i, want := range []uint32{1, 0, 1, 1} {
		bit, err := bs.ReadBit()
		require.NoError(t, err, "bit %d", i)
		require.Equal(t, want, bit, "bit %d", i)
	}
}

// TestReadAssemblesMSBFirst verifies read(4) of 0b10110010 yields 0b1011.
func TestReadAssemblesMSBFirst(t *testing.T) {
	bs := newTestStream([]byte{0b10110010})
	v, err := bs.Read(4)
	require.NoError(t, err)
	require.Equal(t, uint32(0b1011), v)
}

// TestReadSequentialBits walks 0xAB bit by bit.
func TestReadSequentialBits(t *testing.T) {
	bs := newTestStream([]byte{0xAB}) // 0b10101011
	want := []uint32{1, 0, 1, 0, 1, 0, 1, 1}
	for i, w := range want {
		v, err := bs.Read(1)
		require.NoError(t, err, "step %d", i)
		require.Equal(t, w, v, "step %d", i)
	}
}

// TestReadCrossesBytes verifies a field spanning two bytes.
// bytes 0x01 0x80 = bits 00000001 10000000; the first 10 bits are
// 0000000110 = 6.
func TestReadCrossesBytes(t *testing.T) {
	bs := newTestStream([]byte{0x01, 0x80})
	v, err := bs.Read(10)
	require.NoError(t, err)
	require.Equal(t, uint32(6), v)
}

// TestReadPackedFields decodes three 5-bit fields packed MSB-first into two
// bytes: 0xB3 0x20 = 10110 01100 10000 0.
func TestReadPackedFields(t *testing.T) {
	bs := newTestStream([]byte{0xB3, 0x20})
	for i, want := range []uint32{22, 12, 16} {
		v, err := bs.Read(5)
		require.NoError(t, err, "field %d", i)
		require.Equal(t, want, v, "field %d", i)
	}
}

// TestRead32BitField verifies the maximum field width across four bytes.
func TestRead32BitField(t *testing.T) {
	bs := newTestStream([]byte{0x01, 0x02, 0x03, 0x04})
	v, err := bs.Read(32)
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), v)
}

// TestReadWidthOutOfRangePanics verifies the [1,32] width precondition
// fails fast: width bugs are decoder bugs, never data errors.
func TestReadWidthOutOfRangePanics(t *testing.T) {
	bs := newTestStream([]byte{0xFF})
	require.Panics(t, func() { bs.Read(0) })
	require.Panics(t, func() { bs.Read(33) })
}

// TestReadPastEndReturnsEOF verifies bit reads past the source end surface
// as io.EOF rather than fabricated zero bits.
func TestReadPastEndReturnsEOF(t *testing.T) {
	bs := newTestStream(nil)
	_, err := bs.ReadBit()
	require.ErrorIs(t, err, io.EOF)

	bs = newTestStream([]byte{0xFF})
	_, err = bs.Read(9)
	require.ErrorIs(t, err, io.EOF)
}

// TestAlignOnBoundaryIsNoop verifies AlignToByte leaves an already aligned
// position untouched.
func TestAlignOnBoundaryIsNoop(t *testing.T) {
	bs := newTestStream([]byte{0xFF, 0x00})
	_, err := bs.Read(8)
	require.NoError(t, err)
	before := bs.bitPos
	bs.AlignToByte()
	require.Equal(t, before, bs.bitPos)
}

// TestAlignMidByte verifies that after reading k bits, 0<k<8, alignment
// advances to the next boundary exactly once.
func TestAlignMidByte(t *testing.T) {
	for k := 1; k < 8; k++ {
		bs := newTestStream([]byte{0xFF, 0x00})
		_, err := bs.Read(k)
		require.NoError(t, err, "k=%d", k)
		bs.AlignToByte()
		require.Equal(t, int64(8), bs.bitPos, "k=%d", k)
		bs.AlignToByte()
		require.Equal(t, int64(8), bs.bitPos, "k=%d realign", k)
	}
}

// TestReadSomeMatchesDirectSource is the bit/byte consistency property:
// seeking a BitStream to a byte position and bulk-reading equals reading
// the backing source directly from the same position.
func TestReadSomeMatchesDirectSource(t *testing.T) {
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = byte(i * 11)
	}
	for _, pos := range []int64{0, 1, 3, 9, 31, 32} {
		bs := newTestStream(buf)
		bs.Seek(pos)
		got := make([]byte, 8)
		n, err := bs.ReadSome(got)
		require.NoError(t, err, "pos %d", pos)

		src := NewMemorySource(buf)
		src.Seek(pos)
		want := make([]byte, 8)
		wn, err := src.ReadSome(want)
		require.NoError(t, err, "pos %d", pos)

		require.Equal(t, wn, n, "pos %d", pos)
		require.Equal(t, want[:wn], got[:n], "pos %d", pos)
	}
}

// TestReadSomeAdvancesByBytesRead verifies the bit position advances by 8
// bits per byte actually read, including on short reads.
func TestReadSomeAdvancesByBytesRead(t *testing.T) {
	bs := newTestStream(make([]byte, 10))
	bs.Seek(8)
	n, err := bs.ReadSome(make([]byte, 5))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int64(10), bs.Tell())
}

// TestMixedBitAndByteReads interleaves packed fields, alignment, and bulk
// reads the way a record decoder does.
func TestMixedBitAndByteReads(t *testing.T) {
	// 0xC5 = 1100 0101: fields 0b110=6 (3 bits), rest discarded by align.
	bs := newTestStream([]byte{0xC5, 0xDE, 0xAD, 0xBE})
	v, err := bs.Read(3)
	require.NoError(t, err)
	require.Equal(t, uint32(6), v)

	bs.AlignToByte()
	payload := make([]byte, 3)
	n, err := bs.ReadSome(payload)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE}, payload)
	require.Equal(t, int64(4), bs.Tell())
}

// TestTellFloorsToByte verifies Tell reports byte granularity mid-byte.
func TestTellFloorsToByte(t *testing.T) {
	bs := newTestStream([]byte{0xFF, 0xFF})
	require.Equal(t, int64(0), bs.Tell())
	_, err := bs.Read(3)
	require.NoError(t, err)
	require.Equal(t, int64(0), bs.Tell())
	_, err = bs.Read(6) // bit position 9
	require.NoError(t, err)
	require.Equal(t, int64(1), bs.Tell())
}

// TestSeekRereadsSameBits verifies seeking back re-derives identical bits
// instead of continuing stale cached state.
func TestSeekRereadsSameBits(t *testing.T) {
	bs := newTestStream([]byte{0xB3, 0x20})
	first, err := bs.Read(8)
	require.NoError(t, err)
	_, err = bs.Read(5)
	require.NoError(t, err)

	bs.Seek(0)
	again, err := bs.Read(8)
	require.NoError(t, err)
	require.Equal(t, first, again)
}

// TestSeekPastEndShortReads verifies over-end seeks are legal and only
// surface as short reads.
func TestSeekPastEndShortReads(t *testing.T) {
	bs := newTestStream([]byte{1, 2, 3})
	bs.Seek(100)
	n, err := bs.ReadSome(make([]byte, 4))
	require.NoError(t, err)
	require.Equal(t, 0, n)
	_, err = bs.ReadBit()
	require.ErrorIs(t, err, io.EOF)
}
