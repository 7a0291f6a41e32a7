package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/dontdude/regexbench/internal/bench"
	"github.com/dontdude/regexbench/internal/domain"
)

// CorrectnessJSON is the machine-readable correctness summary of one engine.
type CorrectnessJSON struct {
	Engine  string        `json:"engine"`
	Passed  int           `json:"passed"`
	Failed  int           `json:"failed"`
	TotalNs time.Duration `json:"total_ns"`
	Failing []string      `json:"failing,omitempty"`
}

// Document is the JSON report of a whole run.
type Document struct {
	RunID       string                `json:"run_id"`
	Started     time.Time             `json:"started"`
	Platform    string                `json:"platform"`
	Correctness []CorrectnessJSON     `json:"correctness,omitempty"`
	Benchmarks  []domain.ResultRecord `json:"benchmarks,omitempty"`
}

// NewDocument flattens correctness reports and benchmark results.
func NewDocument(runID string, started time.Time, platform string, reps []bench.CorrectnessReport, results []bench.EngineResults) Document {
	doc := Document{RunID: runID, Started: started, Platform: platform}
	for _, rep := range reps {
		c := CorrectnessJSON{Engine: rep.Engine.Name, Passed: rep.Passed, Failed: rep.Failed, TotalNs: rep.Total}
		for _, o := range rep.Outcomes {
			if !o.Passed() {
				c.Failing = append(c.Failing, o.Case.String())
			}
		}
		doc.Correctness = append(doc.Correctness, c)
	}
	for _, er := range results {
		for _, r := range er.Results {
			doc.Benchmarks = append(doc.Benchmarks, r.Record(runID))
		}
	}
	return doc
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
