package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStartAt is the fake clock's starting instant (epoch seconds)
// for scenarios that do not pin their own. Fixed so golden traces stay
// byte-stable.
const DefaultStartAt int64 = 1700000000

// Scenario defines a conformance test scenario: one constraint
// evaluated against a sequence of records under a controlled clock.
type Scenario struct {
	// Name uniquely identifies this scenario; it doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Constraint is the untyped definition, exactly as callers would
	// submit it over the wire.
	Constraint map[string]any `yaml:"constraint"`

	// StartAt pins the fake clock's initial time in epoch seconds.
	// Defaults to DefaultStartAt.
	StartAt int64 `yaml:"start_at,omitempty"`

	// Steps are evaluated in order against a single evaluator, so
	// aggregation state carries across steps.
	Steps []Step `yaml:"steps"`
}

// Step is one record evaluation with an expected verdict.
type Step struct {
	// Advance moves the fake clock forward this many seconds before
	// evaluating.
	Advance int64 `yaml:"advance,omitempty"`

	// Record is the evaluation input.
	Record map[string]any `yaml:"record"`

	// Expect is "pass" or "fail".
	Expect string `yaml:"expect"`

	// MessageContains, when set, must be a substring of the verdict's
	// message.
	MessageContains string `yaml:"message_contains,omitempty"`
}

// LoadScenario reads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadScenarios reads every *.yaml scenario in a directory, sorted by
// file name for deterministic ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Constraint == nil {
		return fmt.Errorf("constraint is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		switch strings.ToLower(step.Expect) {
		case "pass", "fail":
		default:
			return fmt.Errorf("steps[%d].expect must be \"pass\" or \"fail\", got %q", i, step.Expect)
		}
	}
	return nil
}
