package engine

import (
	"regexp"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/dontdude/regexbench/internal/domain"
)

// CompileRegexp compiles pattern with Go's RE2 engine, anchored at both
// ends, with '.' matching newlines.
func CompileRegexp(pattern []byte) (*regexp.Regexp, error) {
	return regexp.Compile(`(?s)^(?:` + latin1(pattern) + `)$`)
}

// Regexp compiles the pattern with the standard library on every call.
func Regexp() domain.Engine {
	return domain.EngineFunc(func(pattern, input []byte) (bool, error) {
		re, err := CompileRegexp(pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(latin1(input)), nil
	})
}

// Regexp2Timeout bounds a single backtracking match.
var Regexp2Timeout = 5 * time.Second

// CompileRegexp2 compiles pattern with the backtracking regexp2 engine.
func CompileRegexp2(pattern []byte) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(`\A(?:`+latin1(pattern)+`)\z`, regexp2.Singleline)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = Regexp2Timeout
	return re, nil
}

// Regexp2 compiles the pattern with regexp2 on every call.
func Regexp2() domain.Engine {
	return domain.EngineFunc(func(pattern, input []byte) (bool, error) {
		re, err := CompileRegexp2(pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(latin1(input))
	})
}
