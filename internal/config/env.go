package config

import (
	"os"

	"github.com/dontdude/regexbench/internal/domain"
)

// CompilerEnv is the environment variable that overrides the compiler pick.
const CompilerEnv = "REGEXBENCH_COMPILER"

// Env picks compilers from the environment. Register it after the file so
// that it wins.
type Env struct {
	Getenv func(string) string
}

var _ domain.CompilerPicker = Env{}

func (Env) Name() string {
	return "env"
}

func (e Env) PickCompiler(_ domain.CompilerFamily, candidates []string) string {
	getenv := e.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	return pick(getenv(CompilerEnv), candidates)
}
