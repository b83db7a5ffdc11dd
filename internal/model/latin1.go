package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxLatin1Rune is the highest code point representable in ISO-8859-1.
const maxLatin1Rune = 0xFF

// IsASCII reports whether every byte of s is 7-bit.
func IsASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}

// EncodeLatin1 maps every byte of s to the Unicode scalar with the same number.
// The input is treated as opaque bytes: it is not UTF-8 decoded, so the mapping is
// total and lossless. ASCII input is returned unchanged.
func EncodeLatin1(s string) string {
	if IsASCII(s) {
		return s
	}

	var builder strings.Builder

	builder.Grow(len(s) * 2) //nolint:mnd // Each non-ASCII byte takes two bytes in UTF-8.

	for i := range len(s) {
		builder.WriteRune(rune(s[i]))
	}

	return builder.String()
}

// DecodeLatin1 is the inverse of EncodeLatin1: each scalar of s becomes one byte.
// It fails with ErrInvalidRequest when s holds a scalar above U+00FF.
func DecodeLatin1(s string) (string, error) {
	if IsASCII(s) {
		return s, nil
	}

	buffer := make([]byte, 0, len(s))

	for i, r := range s {
		if r > maxLatin1Rune {
			return "", fmt.Errorf("%w: header value has non ISO-8859-1 scalar %U at offset %d",
				ErrInvalidRequest, r, i)
		}

		buffer = append(buffer, byte(r))
	}

	return string(buffer), nil
}
