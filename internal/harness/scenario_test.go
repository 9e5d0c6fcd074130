package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/incimine/internal/model"
)

func TestLoadScenario_Basket(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "basket_all_rules.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "basket_all_rules", s.Name)
	assert.Equal(t, model.Thresholds{MinSupport: 0.4, MinConfidence: 0.6, MinLift: 0, TopN: 3}, s.Thresholds)
	assert.Len(t, s.Transactions, 5)
	require.Len(t, s.Assertions, 7)
	assert.Equal(t, AssertRuleMetrics, s.Assertions[4].Type)
	require.NotNil(t, s.Assertions[4].Confidence)
	assert.InDelta(t, 0.666667, *s.Assertions[4].Confidence, 1e-12)
}

func TestParseScenario_DefaultThresholds(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: defaults
transactions: [[a]]
assertions:
  - type: rule_count
    count: 0
`))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultThresholds(), s.Thresholds)
}

func TestParseScenario_PartialThresholds(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: partial
thresholds:
  min_support: 0.2
transactions: []
assertions:
  - type: itemset_count
    count: 0
`))
	require.NoError(t, err)
	want := model.DefaultThresholds()
	want.MinSupport = 0.2
	assert.Equal(t, want, s.Thresholds)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"missing name", "transactions: []\nassertions: [{type: rule_count, count: 0}]", "name is required"},
		{"no assertions", "name: x\ntransactions: []", "at least one assertion"},
		{"unknown field", "name: x\nassertion: []", "field assertion not found"},
		{"unknown type", "name: x\nassertions: [{type: nope}]", `unknown assertion type "nope"`},
		{"count missing", "name: x\nassertions: [{type: itemset_count}]", "count is required"},
		{"negative count", "name: x\nassertions: [{type: rule_count, count: -1}]", "count must be non-negative"},
		{"items missing", "name: x\nassertions: [{type: itemset_support}]", "items are required"},
		{"rule sides missing", "name: x\nassertions: [{type: rule_metrics, antecedent: [a]}]", "antecedent and consequent"},
		{"top order missing", "name: x\nassertions: [{type: top_order}]", "rules list is required"},
		{"negative tolerance", "name: x\nassertions: [{type: rule_count, count: 0, tolerance: -1}]", "tolerance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_ExpectErrorNeedsNoAssertions(t *testing.T) {
	s, err := ParseScenario([]byte("name: bad\nthresholds: {min_support: 2}\nexpect_error: min_support\n"))
	require.NoError(t, err)
	assert.Equal(t, "min_support", s.ExpectError)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenarios_SortedByFileName(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{
		"basket_all_rules",
		"basket_lift_filter",
		"empty_input",
		"incident_labels",
		"invalid_support",
		"lift_tie",
		"support_tie",
	}, names)
}

func TestLoadScenarios_EmptyDir(t *testing.T) {
	_, err := LoadScenarios(t.TempDir())
	assert.ErrorContains(t, err, "no scenario files")
}

func TestLoadScenarios_ReportsBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: [unclosed"), 0o644))

	_, err := LoadScenarios(dir)
	assert.ErrorContains(t, err, "broken.yaml")
}
