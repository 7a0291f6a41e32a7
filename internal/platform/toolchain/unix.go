package toolchain

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dontdude/regexbench/internal/domain"
)

// Driver names: the bare family name optionally followed by a version
// suffix, e.g. gcc, gcc-13, clang++-20. Tools like gcc-ar or clang-format
// share the prefix but are not compilers.
var (
	cDrivers   = regexp.MustCompile(`^(gcc|clang)(-[0-9]+(\.[0-9]+)*)?$`)
	cppDrivers = regexp.MustCompile(`^(g\+\+|clang\+\+)(-[0-9]+(\.[0-9]+)*)?$`)
)

func driverPattern(lang domain.Language) *regexp.Regexp {
	if lang == domain.LanguageCpp {
		return cppDrivers
	}
	return cDrivers
}

// unixCandidates scans every PATH directory, in PATH order, for executable
// compiler drivers of the given language.
func (r *Resolver) unixCandidates(lang domain.Language) []string {
	pattern := driverPattern(lang)
	return FindExecutables(r.getenv("PATH"), func(name string) bool {
		return pattern.MatchString(name)
	})
}

// FindExecutables lists regular executable files accepted by match in each
// directory of pathList. Directories that do not exist are skipped.
func FindExecutables(pathList string, match func(name string) bool) []string {
	var results []string
	seen := make(map[string]bool)
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !match(strings.TrimSuffix(name, ".exe")) {
				continue
			}
			full := filepath.Join(dir, name)
			info, err := os.Stat(full)
			if err != nil || !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
				continue
			}
			abs, err := filepath.Abs(full)
			if err != nil {
				abs = full
			}
			results = append(results, abs)
		}
	}
	return results
}
