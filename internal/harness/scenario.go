package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/incimine/internal/model"
)

// Scenario defines a mining conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Thresholds for the run. Fields left out keep model.DefaultThresholds.
	Thresholds model.Thresholds `yaml:"thresholds"`

	// MaxLen caps itemset size; 0 means unbounded.
	MaxLen int `yaml:"max_len,omitempty"`

	// Workers sets counting parallelism. Results must not depend on it.
	Workers int `yaml:"workers,omitempty"`

	// Transactions are the input item lists, one per record.
	Transactions [][]string `yaml:"transactions"`

	// Assertions validate the analysis result.
	Assertions []Assertion `yaml:"assertions"`

	// ExpectError, when set, is a substring of the error Run must observe.
	// Assertions are not evaluated in that case.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates one aspect of an analysis result.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Items identifies an itemset (itemset_support, itemset_absent).
	Items []string `yaml:"items,omitempty"`

	// Antecedent and Consequent identify a rule (rule_metrics, rule_absent).
	Antecedent []string `yaml:"antecedent,omitempty"`
	Consequent []string `yaml:"consequent,omitempty"`

	// Expected metric values; nil means not checked.
	Support    *float64 `yaml:"support,omitempty"`
	Confidence *float64 `yaml:"confidence,omitempty"`
	Lift       *float64 `yaml:"lift,omitempty"`

	// Count is the expected itemset/rule count, or the absolute support
	// count for itemset_support.
	Count *int `yaml:"count,omitempty"`

	// Rules is the expected top-N order (top_order).
	Rules []RuleRef `yaml:"rules,omitempty"`

	// Tolerance for metric comparison. Defaults to DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// RuleRef names a rule by its two sides.
type RuleRef struct {
	Antecedent []string `yaml:"antecedent"`
	Consequent []string `yaml:"consequent"`
}

// Assertion type constants.
const (
	AssertItemsetCount   = "itemset_count"
	AssertRuleCount      = "rule_count"
	AssertItemsetSupport = "itemset_support"
	AssertItemsetAbsent  = "itemset_absent"
	AssertRuleMetrics    = "rule_metrics"
	AssertRuleAbsent     = "rule_absent"
	AssertTopOrder       = "top_order"
)

// DefaultTolerance is the metric comparison tolerance when an assertion
// does not set one.
const DefaultTolerance = 1e-9

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{Thresholds: model.DefaultThresholds()}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, ordered by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields and assertion shapes.
// Threshold ranges are left to the analysis so expect_error can cover them.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.ExpectError == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one assertion is required")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}

	switch a.Type {
	case AssertItemsetCount, AssertRuleCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertItemsetSupport, AssertItemsetAbsent:
		if len(a.Items) == 0 {
			return fmt.Errorf("assertions[%d]: items are required for %s", index, a.Type)
		}
	case AssertRuleMetrics, AssertRuleAbsent:
		if len(a.Antecedent) == 0 || len(a.Consequent) == 0 {
			return fmt.Errorf("assertions[%d]: antecedent and consequent are required for %s", index, a.Type)
		}
	case AssertTopOrder:
		if a.Rules == nil {
			return fmt.Errorf("assertions[%d]: rules list is required for top_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
