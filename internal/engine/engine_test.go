package engine

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dontdude/regexbench/internal/corpus"
	"github.com/dontdude/regexbench/internal/domain"
)

func TestLatin1(t *testing.T) {
	assert.Equal(t, "abc", latin1([]byte("abc")))
	assert.Equal(t, "Àÿ\x00", latin1([]byte{0xc0, 0xff, 0x00}))
	assert.Equal(t, "", latin1(nil))
}

// sharedCases hold for every full-match engine.
var sharedCases = []struct {
	pattern, input string
	want            bool
}{
	{"abc", "abc", true},
	{"abc", "abcd", false},
	{"a|b", "b", true},
	{"a.c", "a\nc", true},
	{"(a+)+", "aaaa", true},
	{"", "", true},
	{"", "x", false},
	{"[a-z]+@[a-z]+\\.com", "joe@example.com", true},
	{"\\x00", "\x00", true},
}

func TestInProcessEngines(t *testing.T) {
	cachingRegexp, err := CachingRegexp(8)
	require.NoError(t, err)

	engines := map[string]domain.Engine{
		"regexp":         Regexp(),
		"regexp2":        Regexp2(),
		"caching-regexp": cachingRegexp,
	}
	for name, e := range engines {
		t.Run(name, func(t *testing.T) {
			for _, tc := range sharedCases {
				got, err := e.Match([]byte(tc.pattern), []byte(tc.input))
				require.NoError(t, err, tc.pattern)
				assert.Equal(t, tc.want, got, "%q on %q", tc.pattern, tc.input)
			}
		})
	}
}

func TestEnginesMatchBytesAsCharacters(t *testing.T) {
	for _, e := range []domain.Engine{Regexp(), Regexp2()} {
		got, err := e.Match([]byte{0xc0}, []byte{0xc0})
		require.NoError(t, err)
		assert.True(t, got)

		got, err = e.Match([]byte("."), []byte{0xc0})
		require.NoError(t, err)
		assert.True(t, got, "one byte is one character")
	}
}

func TestInvalidPatternIsAnError(t *testing.T) {
	for _, e := range []domain.Engine{Regexp(), Regexp2()} {
		_, err := e.Match([]byte("(unclosed"), []byte("x"))
		assert.Error(t, err)
	}
}

func TestCachingKeysOnIdentity(t *testing.T) {
	c, err := NewCaching(4, CompileRegexp, func(_ *regexp.Regexp, _ []byte) (bool, error) {
		return true, nil
	})
	require.NoError(t, err)

	pattern := []byte("a+")
	_, err = c.Match(pattern, nil)
	require.NoError(t, err)
	_, err = c.Match(pattern, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = c.Match([]byte("a+"), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len(), "a copy with equal content is a different key")
}

func TestCachingEvicts(t *testing.T) {
	c, err := NewCaching(2, CompileRegexp, func(re *regexp.Regexp, input []byte) (bool, error) {
		return re.Match(input), nil
	})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := c.Match([]byte("x"), []byte("x"))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())
}

func TestCachingDoesNotCacheFailures(t *testing.T) {
	c, err := NewCaching(2, CompileRegexp, func(re *regexp.Regexp, input []byte) (bool, error) {
		return re.Match(input), nil
	})
	require.NoError(t, err)
	_, err = c.Match([]byte("("), nil)
	assert.Error(t, err)
	assert.Zero(t, c.Len())
}

func TestReferenceEnginesPassDefaultCorpus(t *testing.T) {
	tests := corpus.Collect([]domain.Provider{corpus.Defaults{}}).Tests()
	require.NotEmpty(t, tests)

	for name, e := range map[string]domain.Engine{"regexp": Regexp(), "regexp2": Regexp2()} {
		t.Run(name, func(t *testing.T) {
			for _, c := range tests {
				got, err := e.Match(c.Pattern, c.Input)
				require.NoError(t, err, c.String())
				assert.Equal(t, c.Expected, got, c.String())
			}
		})
	}
}

type skipEngine string

func (s skipEngine) Name() string                { return "skip-" + string(s) }
func (s skipEngine) SkipEngine(name string) bool { return name == string(s) }

func TestFilterEngines(t *testing.T) {
	engines, err := Builtin()
	require.NoError(t, err)
	require.Len(t, engines, 3)

	kept := Filter(engines, []domain.Provider{skipEngine("regexp2")})
	require.Len(t, kept, 2)
	assert.Equal(t, "go-regexp", kept[0].Name)
	assert.Equal(t, "go-regexp-cached", kept[1].Name)
	assert.Len(t, engines, 3, "input is left intact")
	assert.Same(t, engines[0], kept[0])
}
