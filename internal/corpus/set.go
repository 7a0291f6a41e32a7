package corpus

import "github.com/dontdude/regexbench/internal/domain"

// Set is an immutable, ordered corpus. Accessors return copies so that
// callers cannot disturb the cases other consumers see.
type Set struct {
	cases []domain.Case
}

// NewSet builds a Set from cases, copying them.
func NewSet(cases ...domain.Case) *Set {
	return &Set{cases: cloneAll(cases, func(domain.Case) bool { return true })}
}

// Len is the total number of cases.
func (s *Set) Len() int {
	return len(s.cases)
}

// All returns every case in corpus order.
func (s *Set) All() []domain.Case {
	return cloneAll(s.cases, func(domain.Case) bool { return true })
}

// Tests returns the correctness cases in corpus order.
func (s *Set) Tests() []domain.Case {
	return cloneAll(s.cases, func(c domain.Case) bool { return !c.Benchmark })
}

// Benchmarks returns the benchmark cases in corpus order.
func (s *Set) Benchmarks() []domain.Case {
	return cloneAll(s.cases, func(c domain.Case) bool { return c.Benchmark })
}

// Patterns returns every distinct pattern, first occurrence first.
func (s *Set) Patterns() [][]byte {
	seen := make(map[string]bool)
	var out [][]byte
	for _, c := range s.cases {
		if !seen[string(c.Pattern)] {
			seen[string(c.Pattern)] = true
			out = append(out, c.Clone().Pattern)
		}
	}
	return out
}

func cloneAll(cases []domain.Case, keep func(domain.Case) bool) []domain.Case {
	var out []domain.Case
	for _, c := range cases {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}
