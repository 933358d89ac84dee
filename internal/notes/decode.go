package notes

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Decode converts raw note bytes to NFC-normalized UTF-8. A UTF-8 or
// UTF-16 byte order mark selects the encoding and is removed; without one
// the bytes are read as UTF-8, with invalid sequences replaced by U+FFFD.
func Decode(b []byte) (string, error) {
	t := transform.Chain(unicode.BOMOverride(unicode.UTF8.NewDecoder()), norm.NFC)
	out, _, err := transform.Bytes(t, b)
	if err != nil {
		return "", fmt.Errorf("decoding note: %w", err)
	}
	return string(out), nil
}
