package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden-file representation of a scenario run. It
// excludes timestamps and fingerprints on purpose: those are
// time-dependent even under a fake clock once scenarios change, and
// the verdict trace is what golden files are meant to pin.
type Snapshot struct {
	Scenario     string         `json:"scenario"`
	ConstraintID string         `json:"constraint_id"`
	Steps        []StepSnapshot `json:"steps"`
}

// StepSnapshot is one step's verdict in the golden trace.
type StepSnapshot struct {
	Index   int    `json:"index"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// RunWithGolden executes a scenario and compares its verdict trace
// against testdata/golden/<name>.golden. Regenerate golden files with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) (*RunResult, error) {
	t.Helper()

	result, err := Run(s)
	if err != nil {
		return nil, err
	}

	snapshot := Snapshot{
		Scenario:     result.ScenarioName,
		ConstraintID: result.ConstraintID,
		Steps:        make([]StepSnapshot, len(result.Outcomes)),
	}
	for i, o := range result.Outcomes {
		snapshot.Steps[i] = StepSnapshot{Index: o.Index, Passed: o.Passed, Message: o.Message}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, data)

	return result, nil
}
