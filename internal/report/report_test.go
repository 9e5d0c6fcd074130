package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/incimine/internal/analysis"
	"github.com/roach88/incimine/internal/model"
	"github.com/roach88/incimine/internal/store"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func fixtureRules() []model.Rule {
	return []model.Rule{
		{
			Antecedent: []model.Item{"Severity:High"}, Consequent: []model.Item{"Status:Open"},
			AntecedentSupport: 0.5, ConsequentSupport: 0.6, Support: 0.3, Count: 3,
			Confidence: 0.75, Lift: 1.25, Leverage: 0.06, Conviction: 2, ZhangsMetric: 0.5,
		},
		{
			Antecedent: []model.Item{"Service:API", "Tag:db"}, Consequent: []model.Item{"Priority:P1"},
			AntecedentSupport: 0.25, ConsequentSupport: 0.5, Support: 0.25, Count: 2,
			Confidence: 1, Lift: 2, Leverage: 0.125, Conviction: math.Inf(1), ZhangsMetric: 1,
		},
	}
}

func fixtureItemsets() []model.Itemset {
	return []model.Itemset{
		{Items: []model.Item{"Severity:High"}, Count: 5, Support: 0.5},
		{Items: []model.Item{"Status:Open"}, Count: 6, Support: 0.6},
		{Items: []model.Item{"Severity:High", "Status:Open"}, Count: 3, Support: 0.3},
	}
}

func fixtureResult() *analysis.Result {
	rules := fixtureRules()
	return &analysis.Result{
		RunID:            "run-0001",
		Thresholds:       model.DefaultThresholds(),
		TransactionCount: 10,
		UniverseSize:     1234,
		Itemsets:         fixtureItemsets(),
		Rules:            rules,
		Ranked:           rules,
		Top:              rules,
		Fingerprint:      "deadbeef",
	}
}

func TestBuildConclusions(t *testing.T) {
	got := BuildConclusions(fixtureRules())
	assert.Equal(t, []Conclusion{
		{Number: 1, Antecedents: "Severity:High", Consequents: "Status:Open", Confidence: "75.0%", Support: "30.0%", Lift: "1.25x"},
		{Number: 2, Antecedents: "Service:API, Tag:db", Consequents: "Priority:P1", Confidence: "100.0%", Support: "25.0%", Lift: "2.00x"},
	}, got)

	assert.Empty(t, BuildConclusions(nil))
}

func TestFormatConclusion_Golden(t *testing.T) {
	var buf bytes.Buffer
	for i, r := range fixtureRules() {
		buf.WriteString(FormatConclusion(r, i+1))
	}
	newGoldie(t).Assert(t, "conclusions", buf.Bytes())
}

func TestWriteRulesCSV_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRulesCSV(&buf, fixtureRules()))
	newGoldie(t).Assert(t, "rules_csv", buf.Bytes())
}

func TestWriteConclusionsCSV_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConclusionsCSV(&buf, BuildConclusions(fixtureRules())))
	newGoldie(t).Assert(t, "conclusions_csv", buf.Bytes())
}

func TestWriteItemsetsCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteItemsetsCSV(&buf, nil))
	assert.Equal(t, "support,itemsets,count,length\n", buf.String())
}

func TestWriteText_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, fixtureResult(), NewPrinter()))
	newGoldie(t).Assert(t, "analysis_text", buf.Bytes())
}

func TestWriteText_NoRules_Golden(t *testing.T) {
	res := fixtureResult()
	res.Rules, res.Ranked, res.Top = []model.Rule{}, []model.Rule{}, []model.Rule{}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, res, NewPrinter()))
	newGoldie(t).Assert(t, "analysis_text_no_rules", buf.Bytes())
}

func TestWriteText_NoTransactions(t *testing.T) {
	res := &analysis.Result{Thresholds: model.DefaultThresholds()}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, res, NewPrinter()))
	assert.Contains(t, buf.String(), "No transactions to analyze.")
	assert.NotContains(t, buf.String(), "Try adjusting parameters")
}

func TestSaveResults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	files, err := SaveResults(dir, "", now, fixtureResult())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "apriori_results_all_rules_20250314_092653.csv"), files.Rules)
	assert.Equal(t, filepath.Join(dir, "apriori_results_conclusions_20250314_092653.csv"), files.Conclusions)
	assert.Equal(t, filepath.Join(dir, "apriori_results_itemsets_20250314_092653.csv"), files.Itemsets)

	var want bytes.Buffer
	require.NoError(t, WriteRulesCSV(&want, fixtureRules()))
	got, err := os.ReadFile(files.Rules)
	require.NoError(t, err)
	assert.Equal(t, want.String(), string(got))

	itemsets, err := os.ReadFile(files.Itemsets)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "itemsets_csv", itemsets)
}

func TestSaveResults_CustomPrefix(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	files, err := SaveResults(dir, "weekly", now, fixtureResult())
	require.NoError(t, err)
	assert.Equal(t, "weekly_conclusions_20250102_030405.csv", filepath.Base(files.Conclusions))
}

func TestRuleView_InfiniteConvictionIsNull(t *testing.T) {
	views := RuleViews(fixtureRules())
	require.Len(t, views, 2)
	require.NotNil(t, views[0].Conviction)
	assert.Equal(t, 2.0, *views[0].Conviction)
	assert.Nil(t, views[1].Conviction)

	data, err := json.Marshal(views[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"conviction":null`)
}

func TestNewResultView(t *testing.T) {
	v := NewResultView(fixtureResult())
	assert.Equal(t, "run-0001", v.RunID)
	assert.Equal(t, 3, v.ItemsetCount)
	assert.Equal(t, 2, v.RuleCount)
	assert.Len(t, v.Conclusions, 2)
	assert.Empty(t, v.Suggestions)

	_, err := json.Marshal(v)
	require.NoError(t, err)
}

type fakeStats struct {
	total  int64
	counts map[string][]store.ValueCount
	err    error
}

func (f fakeStats) CountIncidents(context.Context) (int64, error) {
	return f.total, f.err
}

func (f fakeStats) ValueCounts(_ context.Context, column string) ([]store.ValueCount, error) {
	return f.counts[column], nil
}

func TestWriteStats_Golden(t *testing.T) {
	src := fakeStats{
		total: 1234,
		counts: map[string][]store.ValueCount{
			"severity": {{Value: "High", Count: 1000}, {Value: "Critical", Count: 200}, {Value: "Low", Count: 34}},
			"status":   {{Value: "Open", Count: 1234}},
		},
	}
	stats, err := CollectStats(t.Context(), src, DefaultStatsColumns)
	require.NoError(t, err)
	require.Len(t, stats.Columns, 4)

	var buf bytes.Buffer
	require.NoError(t, WriteStats(&buf, stats, NewPrinter()))
	newGoldie(t).Assert(t, "stats", buf.Bytes())
}

func TestCollectStats_Error(t *testing.T) {
	_, err := CollectStats(t.Context(), fakeStats{err: errors.New("boom")}, DefaultStatsColumns)
	assert.ErrorContains(t, err, "boom")
}
