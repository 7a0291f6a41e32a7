package engine

import (
	"strings"
	"unicode/utf8"
)

// latin1 maps every byte to the code point of the same value so that
// UTF-8 based regex libraries see one character per input byte.
func latin1(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
