package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanByte(t *testing.T) {
	cases := map[byte]string{
		0:    `\0`,
		'\n': `\n`,
		'\r': `\r`,
		'\t': `\t`,
		'\f': `\f`,
		0x0b: `\x0B`,
		' ':  " ",
		'a':  "a",
		'\\': `\`,
		0x7f: `\x7F`,
		0xc8: `\xC8`,
		0xff: `\xFF`,
	}
	for in, want := range cases {
		assert.Equal(t, want, HumanByte(in), "byte %#x", in)
	}
}

func TestCaseString(t *testing.T) {
	c := Case{Source: DefaultSource, Pattern: []byte("[a]|[b-b]"), Input: []byte("aa")}
	assert.Equal(t, "regex=[a]|[b-b],input=aa,test,negative", c.String())

	c = Case{Source: "extra", Pattern: []byte("a"), Input: []byte("a"), Expected: true, Benchmark: true}
	assert.Equal(t, "[extra] regex=a,input=a,benchmark,positive", c.String())

	long := make([]byte, 25)
	for i := range long {
		long[i] = 'x'
	}
	c = Case{Source: DefaultSource, Pattern: []byte(".*"), Input: long, WindowSize: 40}
	assert.Equal(t, "regex=.*,input=xxxxxxxxxxxxxxxxxxxx... +5 more,slidingWindowSize=40", c.String())
}

func TestCaseClone(t *testing.T) {
	orig := Case{Pattern: []byte("ab"), Input: []byte("cd"), Expected: true}
	clone := orig.Clone()
	clone.Pattern[0] = 'x'
	clone.Input[0] = 'y'
	assert.Equal(t, "ab", string(orig.Pattern))
	assert.Equal(t, "cd", string(orig.Input))

	empty := Case{}.Clone()
	require.NotNil(t, empty.Pattern)
	require.NotNil(t, empty.Input)
}

func TestToolchainErrorUnwrap(t *testing.T) {
	err := error(&ToolchainError{Language: LanguageCpp, Family: FamilyUnix, Hook: "CompilerPicker"})
	assert.ErrorIs(t, err, ErrToolchainUnavailable)
	assert.Contains(t, err.Error(), "C++")
	assert.Contains(t, err.Error(), "CompilerPicker")

	var ce error = &CompileError{Artifact: "/tmp/x.so", Diagnostic: "boom"}
	assert.ErrorIs(t, ce, ErrCompileFailure)
}

func TestParseLanguage(t *testing.T) {
	l, err := ParseLanguage("c++")
	require.NoError(t, err)
	assert.Equal(t, LanguageCpp, l)
	assert.Equal(t, ".cpp", l.SourceExt())

	l, err = ParseLanguage("c")
	require.NoError(t, err)
	assert.Equal(t, LanguageC, l)
	assert.Equal(t, ".c", l.SourceExt())

	_, err = ParseLanguage("rust")
	assert.Error(t, err)
}
