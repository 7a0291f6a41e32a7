package domain

// Provider is a configuration collaborator. The harness consults each
// registered provider for the optional hook interfaces below via type
// assertion; a provider implements only the hooks it cares about.
type Provider interface {
	Name() string
}

// CaseBuilder collects corpus entries from providers.
type CaseBuilder interface {
	Add(pattern, input []byte, expected bool)
	AddSlidingWindow(pattern, input []byte, window int)
	// BenchmarkGroup opens a group; cases added until it is closed are
	// benchmark cases. Groups must be closed in reverse order of opening.
	BenchmarkGroup() Group
	TestGroup() Group
}

// Group is a scope opened on a CaseBuilder.
type Group interface {
	Close() error
}

// CaseProvider contributes corpus entries.
type CaseProvider interface {
	Provider
	ProvideCases(b CaseBuilder)
}

// EngineFilter excludes engines by name.
type EngineFilter interface {
	Provider
	SkipEngine(name string) bool
}

// CaseFilter excludes corpus entries after all providers contributed.
type CaseFilter interface {
	Provider
	SkipCase(source string, pattern, input []byte, benchmark bool) bool
}

// ProgressSwitch lets a provider suppress live progress output.
type ProgressSwitch interface {
	Provider
	ProgressDisabled() bool
}

// CompilerPicker chooses among discovered compilers. For FamilyUnix the
// candidates are compiler executables, for FamilyMSVC they are vcvars
// scripts. Returning "" defers to the next provider or the first candidate.
type CompilerPicker interface {
	Provider
	PickCompiler(family CompilerFamily, candidates []string) string
}

// CompilerFlagAdjuster rewrites the compiler argument list (without the
// compiler path itself) before invocation.
type CompilerFlagAdjuster interface {
	Provider
	AdjustCompilerOptions(family CompilerFamily, compilerPath string, args []string) []string
}
