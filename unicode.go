package lsdict

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// ReadUTF16String reads chars UTF-16LE code units (two bytes each) from the
// stream and decodes them. The stream must be byte-aligned. A source that
// runs out mid-string is reported as a truncation error, since names in the
// container are always length-prefixed and complete.
func ReadUTF16String(bs *BitStream, chars int) (string, error) {
	if chars == 0 {
		return "", nil
	}
	raw := make([]byte, 2*chars)
	n, err := bs.ReadSome(raw)
	if err != nil {
		return "", err
	}
	if n != len(raw) {
		return "", fmt.Errorf("utf-16 string: need %d bytes, got %d", len(raw), n)
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("utf-16 string: %w", err)
	}
	return string(s), nil
}
