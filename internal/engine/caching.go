package engine

import (
	"regexp"
	"unsafe"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dontdude/regexbench/internal/domain"
)

// identity is the address and length of a pattern buffer. Holding the
// pointer keeps the buffer alive, so an address is never reused while its
// entry is cached.
type identity struct {
	data *byte
	n    int
}

// Caching memoizes compiled patterns by buffer identity rather than by
// content, the way a careless engine might. Callers that hand in fresh
// copies of the same pattern miss the cache.
type Caching[M any] struct {
	compile func([]byte) (M, error)
	match   func(M, []byte) (bool, error)
	cache   *lru.Cache[identity, M]
}

var _ domain.Engine = (*Caching[int])(nil)

// NewCaching returns a Caching engine holding at most size compiled
// patterns.
func NewCaching[M any](size int, compile func([]byte) (M, error), match func(M, []byte) (bool, error)) (*Caching[M], error) {
	cache, err := lru.New[identity, M](size)
	if err != nil {
		return nil, err
	}
	return &Caching[M]{compile: compile, match: match, cache: cache}, nil
}

// CachingRegexp memoizes Go regexp compilation by pattern identity.
func CachingRegexp(size int) (domain.Engine, error) {
	return NewCaching(size, CompileRegexp, func(re *regexp.Regexp, input []byte) (bool, error) {
		return re.MatchString(latin1(input)), nil
	})
}

// Match compiles pattern unless this exact buffer was seen before.
func (c *Caching[M]) Match(pattern, input []byte) (bool, error) {
	key := identity{data: unsafe.SliceData(pattern), n: len(pattern)}
	m, ok := c.cache.Get(key)
	if !ok {
		var err error
		if m, err = c.compile(pattern); err != nil {
			return false, err
		}
		c.cache.Add(key, m)
	}
	return c.match(m, input)
}

// Len is the number of cached patterns.
func (c *Caching[M]) Len() int {
	return c.cache.Len()
}
