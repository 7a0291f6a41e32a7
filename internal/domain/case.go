package domain

import (
	"bytes"
	"strconv"
	"strings"
)

const maxDescribedInput = 20

// Case is one correctness or benchmark datum.
// A non-zero WindowSize turns the case into a sliding-window throughput
// benchmark, in which case Expected is not checked.
type Case struct {
	Source     string
	Pattern    []byte
	Input      []byte
	Expected   bool
	Benchmark  bool
	WindowSize int
}

// SlidingWindow reports whether the case scans fixed-size slices of Input.
func (c Case) SlidingWindow() bool {
	return c.WindowSize > 0
}

// Clone returns a copy that shares no buffers with c.
func (c Case) Clone() Case {
	c.Pattern = bytes.Clone(c.Pattern)
	c.Input = bytes.Clone(c.Input)
	if c.Pattern == nil {
		c.Pattern = []byte{}
	}
	if c.Input == nil {
		c.Input = []byte{}
	}
	return c
}

func (c Case) String() string {
	var sb strings.Builder
	if c.Source != "" && c.Source != DefaultSource {
		sb.WriteByte('[')
		sb.WriteString(c.Source)
		sb.WriteString("] ")
	}
	sb.WriteString("regex=")
	sb.WriteString(HumanBytes(c.Pattern))
	sb.WriteString(",input=")
	for i := 0; i < min(len(c.Input), maxDescribedInput); i++ {
		sb.WriteString(HumanByte(c.Input[i]))
	}
	if len(c.Input) > maxDescribedInput {
		sb.WriteString("... +")
		sb.WriteString(strconv.Itoa(len(c.Input) - maxDescribedInput))
		sb.WriteString(" more")
	}
	if c.SlidingWindow() {
		sb.WriteString(",slidingWindowSize=")
		sb.WriteString(strconv.Itoa(c.WindowSize))
		return sb.String()
	}
	if c.Benchmark {
		sb.WriteString(",benchmark")
	} else {
		sb.WriteString(",test")
	}
	if c.Expected {
		sb.WriteString(",positive")
	} else {
		sb.WriteString(",negative")
	}
	return sb.String()
}

// DefaultSource names the built-in corpus provider.
const DefaultSource = "default"

// HumanByte renders b for terminal output: printable ASCII as-is, common
// control characters as C escapes, everything else as \xHH.
func HumanByte(b byte) string {
	switch b {
	case 0:
		return `\0`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case '\f':
		return `\f`
	}
	if b >= 32 && b <= 126 {
		return string(rune(b))
	}
	const hex = "0123456789ABCDEF"
	return `\x` + string([]byte{hex[b>>4], hex[b&0x0f]})
}

// HumanBytes renders every byte of b with HumanByte.
func HumanBytes(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		sb.WriteString(HumanByte(c))
	}
	return sb.String()
}
