package compiler

import (
	"fmt"

	"github.com/dontdude/regexbench/internal/domain"
)

// LanguageVersion selects a language standard. Revision is the year suffix
// as written in the standard's name (98, 3, 11, ...). Extensions selects
// the vendor dialect on unix compilers (gnu++17 instead of c++17).
type LanguageVersion struct {
	Language   domain.Language
	Revision   int
	Extensions bool
}

var (
	Cpp98 = LanguageVersion{Language: domain.LanguageCpp, Revision: 98}
	Cpp03 = LanguageVersion{Language: domain.LanguageCpp, Revision: 3}
	Cpp11 = LanguageVersion{Language: domain.LanguageCpp, Revision: 11}
	Cpp14 = LanguageVersion{Language: domain.LanguageCpp, Revision: 14}
	Cpp17 = LanguageVersion{Language: domain.LanguageCpp, Revision: 17}
	Cpp20 = LanguageVersion{Language: domain.LanguageCpp, Revision: 20}
	Cpp23 = LanguageVersion{Language: domain.LanguageCpp, Revision: 23}
	Cpp26 = LanguageVersion{Language: domain.LanguageCpp, Revision: 26}
	C99   = LanguageVersion{Language: domain.LanguageC, Revision: 99}
	C11   = LanguageVersion{Language: domain.LanguageC, Revision: 11}
	C17   = LanguageVersion{Language: domain.LanguageC, Revision: 17}
)

// WithExtensions returns v with vendor extensions enabled.
func (v LanguageVersion) WithExtensions() LanguageVersion {
	v.Extensions = true
	return v
}

func (v LanguageVersion) String() string {
	s := fmt.Sprintf("%s%d", v.Language, v.Revision)
	if v.Extensions {
		s += " with extensions"
	}
	return s
}

type standardKey struct {
	language domain.Language
	revision int
}

// unixRevisions maps a revision to the digits used in -std=.
var unixRevisions = map[standardKey]string{
	{domain.LanguageCpp, 98}: "98",
	{domain.LanguageCpp, 3}:  "03",
	{domain.LanguageCpp, 11}: "11",
	{domain.LanguageCpp, 14}: "14",
	{domain.LanguageCpp, 17}: "17",
	{domain.LanguageCpp, 20}: "20",
	{domain.LanguageCpp, 23}: "23",
	{domain.LanguageCpp, 26}: "26",
	{domain.LanguageC, 89}:   "89",
	{domain.LanguageC, 99}:   "99",
	{domain.LanguageC, 11}:   "11",
	{domain.LanguageC, 17}:   "17",
	{domain.LanguageC, 23}:   "23",
}

// msvcStandards maps a revision to the /std: token. cl.exe has no separate
// extension dialects, so Extensions is ignored.
var msvcStandards = map[standardKey]string{
	{domain.LanguageCpp, 14}: "c++14",
	{domain.LanguageCpp, 17}: "c++17",
	{domain.LanguageCpp, 20}: "c++20",
	{domain.LanguageC, 11}:   "c11",
	{domain.LanguageC, 17}:   "c17",
}

// StandardToken returns the compiler-specific standard selector for v,
// without the -std= or /std: prefix.
func StandardToken(family domain.CompilerFamily, v LanguageVersion) (string, error) {
	key := standardKey{v.Language, v.Revision}
	switch family {
	case domain.FamilyMSVC:
		if token, ok := msvcStandards[key]; ok {
			return token, nil
		}
	case domain.FamilyUnix:
		if digits, ok := unixRevisions[key]; ok {
			prefix := "c"
			if v.Extensions {
				prefix = "gnu"
			}
			if v.Language == domain.LanguageCpp {
				prefix += "++"
			}
			return prefix + digits, nil
		}
	}
	return "", fmt.Errorf("%w: %s for %s compilers", domain.ErrUnsupportedStandard, v, family)
}
