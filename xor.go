package lsdict

// KeyFunc derives the XOR key for the byte at absolute position pos. The
// key must depend on pos alone — never on read history — so that a byte
// decodes identically whether it is reached sequentially from position 0 or
// through a direct seek.
type KeyFunc func(pos int64) byte

// FixedKey keys every position with the same byte.
func FixedKey(k byte) KeyFunc {
	return func(int64) byte { return k }
}

// PositionKey mixes the low byte of the position into seed, giving a key
// stream that cycles every 256 bytes.
func PositionKey(seed byte) KeyFunc {
	return func(pos int64) byte { return seed ^ byte(pos) }
}

// XorSource decorates a ByteSource with a positional XOR cipher: the byte
// at absolute position P is delivered as raw(P) ^ Key(P). XOR is an
// involution, so the same source both obfuscates and deobfuscates.
//
// Obfuscated containers keep their keying scheme a format detail; callers
// supply whatever KeyFunc the concrete format specifies.
type XorSource struct {
	Src ByteSource
	Key KeyFunc
}

func (x *XorSource) ReadSome(p []byte) (int, error) {
	start := x.Src.Tell()
	n, err := x.Src.ReadSome(p)
	XorBytes(p[:n], start, x.Key)
	return n, err
}

func (x *XorSource) Seek(pos int64) { x.Src.Seek(pos) }

func (x *XorSource) Tell() int64 { return x.Src.Tell() }

// XorBytes applies key positionally to p, where p[0] sits at absolute byte
// position start. XorSource uses it for decoding; tests and writers use it
// for the encoding direction.
func XorBytes(p []byte, start int64, key KeyFunc) {
	for i := range p {
		p[i] ^= key(start + int64(i))
	}
}
