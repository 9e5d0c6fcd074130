package harness

import (
	"math"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/incimine/internal/analysis"
	"github.com/roach88/incimine/internal/model"
)

// Snapshot renders res as canonical JSON for golden comparison.
//
// Canonical JSON forbids floats, so metrics are written as fixed-precision
// decimal strings. Rules appear in rank order and itemsets in discovery
// order. The fingerprint and run ID are left out.
func Snapshot(name string, res *analysis.Result) ([]byte, error) {
	itemsets := make([]any, len(res.Itemsets))
	for i, s := range res.Itemsets {
		itemsets[i] = map[string]any{
			"items":   s.Items,
			"count":   s.Count,
			"support": fixed(s.Support),
		}
	}

	rules := make([]any, len(res.Ranked))
	for i, r := range res.Ranked {
		rules[i] = map[string]any{
			"antecedent":    r.Antecedent,
			"consequent":    r.Consequent,
			"count":         r.Count,
			"support":       fixed(r.Support),
			"confidence":    fixed(r.Confidence),
			"lift":          fixed(r.Lift),
			"leverage":      fixed(r.Leverage),
			"conviction":    fixed(r.Conviction),
			"zhangs_metric": fixed(r.ZhangsMetric),
		}
	}

	th := res.Thresholds
	return model.MarshalCanonical(map[string]any{
		"scenario_name":     name,
		"transaction_count": res.TransactionCount,
		"thresholds": map[string]any{
			"min_support":    fixed(th.MinSupport),
			"min_confidence": fixed(th.MinConfidence),
			"min_lift":       fixed(th.MinLift),
			"top_n":          th.TopN,
		},
		"itemsets": itemsets,
		"rules":    rules,
	})
}

// fixed formats v with six decimals; infinity is "inf".
func fixed(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if result.Analysis == nil {
		return result, nil
	}
	if err := AssertGolden(t, scenario.Name, result.Analysis); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed analysis against its golden
// file without re-running.
func AssertGolden(t *testing.T, name string, res *analysis.Result) error {
	t.Helper()

	data, err := Snapshot(name, res)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
