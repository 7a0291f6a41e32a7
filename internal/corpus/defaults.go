package corpus

import (
	"log/slog"
	"os"

	"github.com/dontdude/regexbench/internal/domain"
)

// DefaultWindow is the window size of the built-in throughput cases.
const DefaultWindow = 40

// slidingPatterns scan prose for names and word shapes.
var slidingPatterns = []string{
	`.*Sherlock Holmes.*`,
	`.*Sherlock\s+Holmes.*`,
	`.*(Holmes.{0,25}Watson|Watson.{0,25}Holmes).*`,
	`.*[a-zA-Z]+ing.*`,
	`.*\s[a-zA-Z]{0,12}ing\s.*`,
}

// Defaults provides the built-in corpus.
type Defaults struct {
	// TextPath names a file to scan in the sliding-window cases. When empty
	// or unreadable, a generated text is used instead.
	TextPath string
}

var _ domain.CaseProvider = Defaults{}

func (Defaults) Name() string {
	return domain.DefaultSource
}

func (d Defaults) ProvideCases(b domain.CaseBuilder) {
	for _, c := range defaultTests {
		b.Add([]byte(c.pattern), []byte(c.input), c.expected)
	}

	group := b.BenchmarkGroup()
	for _, c := range defaultBenchmarks {
		b.Add([]byte(c.pattern), []byte(c.input), c.expected)
	}
	group.Close()

	text := d.text()
	for _, p := range slidingPatterns {
		b.AddSlidingWindow([]byte(p), text, DefaultWindow)
	}
}

func (d Defaults) text() []byte {
	if d.TextPath != "" {
		data, err := os.ReadFile(d.TextPath)
		if err == nil {
			return data
		}
		slog.Warn("Falling back to generated text", "path", d.TextPath, "error", err)
	}
	return Text()
}
