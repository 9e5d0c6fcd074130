package rules

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/incimine/internal/encoder"
	"github.com/roach88/incimine/internal/miner"
	"github.com/roach88/incimine/internal/model"
)

func items(labels ...string) []model.Item {
	out := make([]model.Item, len(labels))
	for i, l := range labels {
		out[i] = model.Item(l)
	}
	return out
}

func mined(t *testing.T, txs []model.Transaction, minSupport float64) []model.Itemset {
	t.Helper()
	m, err := miner.New(minSupport)
	require.NoError(t, err)
	res, err := m.Mine(encoder.Encode(txs))
	require.NoError(t, err)
	require.Equal(t, len(txs), res.Transactions)
	return res.Itemsets
}

func exampleItemsets(t *testing.T) []model.Itemset {
	return mined(t, []model.Transaction{
		{"A", "B"},
		{"A", "B", "C"},
		{"A", "C"},
		{"B", "C"},
		{"A", "B", "C"},
	}, 0.4)
}

func generate(t *testing.T, itemsets []model.Itemset, total int, minConfidence, minLift float64, opts ...Option) []model.Rule {
	t.Helper()
	g, err := New(minConfidence, minLift, opts...)
	require.NoError(t, err)
	rs, err := g.Generate(itemsets, total)
	require.NoError(t, err)
	return rs
}

func find(rs []model.Rule, ante, cons []model.Item) (model.Rule, bool) {
	key := model.Rule{Antecedent: ante, Consequent: cons}.Key()
	for _, r := range rs {
		if r.Key() == key {
			return r, true
		}
	}
	return model.Rule{}, false
}

func TestGenerateExample(t *testing.T) {
	rs := generate(t, exampleItemsets(t), 5, 0.6, 0)
	require.Len(t, rs, 9)

	r, ok := find(rs, items("A", "B"), items("C"))
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, r.Confidence, 1e-12)
	assert.InDelta(t, 0.4, r.Support, 1e-12)
	assert.InDelta(t, 0.6, r.AntecedentSupport, 1e-12)
	assert.InDelta(t, 0.8, r.ConsequentSupport, 1e-12)
	assert.InDelta(t, (2.0/3.0)/0.8, r.Lift, 1e-12)
	assert.Equal(t, int64(2), r.Count)

	_, ok = find(rs, items("A"), items("B", "C"))
	assert.False(t, ok, "confidence 0.5 is below 0.6")
}

func TestGenerateLiftFilter(t *testing.T) {
	// Every rule in the example has lift below 1.
	rs := generate(t, exampleItemsets(t), 5, 0.6, 1.0)
	assert.Empty(t, rs)
	assert.NotNil(t, rs)
}

func TestGenerateDiscoveryOrder(t *testing.T) {
	rs := generate(t, exampleItemsets(t), 5, 0.6, 0)
	require.NotEmpty(t, rs)
	// A,B,C,AB,AC,BC,ABC: first rules come from AB with mask 1 then 2.
	assert.Equal(t, "A => B", rs[0].String())
	assert.Equal(t, "B => A", rs[1].String())
	assert.Equal(t, "A, B => C", rs[6].String())
}

func repeat(n int, tx model.Transaction) []model.Transaction {
	out := make([]model.Transaction, n)
	for i := range out {
		out[i] = tx
	}
	return out
}

func concat(groups ...[]model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func TestGenerateKeepsThresholdTies(t *testing.T) {
	// 3 of the 5 transactions with A also hold B: confidence 3/5.
	confTie := concat(
		repeat(3, model.Transaction{"A", "B"}),
		repeat(2, model.Transaction{"A"}),
		repeat(5, model.Transaction{"B"}),
	)
	// 11 of 18 hold A and B, 15 hold A: lift 11*18/(15*11) = 1.2 for both
	// directions.
	liftTie := concat(
		repeat(11, model.Transaction{"A", "B"}),
		repeat(4, model.Transaction{"A"}),
		repeat(3, model.Transaction{}),
	)

	tests := []struct {
		name          string
		txs           []model.Transaction
		minConfidence float64
		minLift       float64
		want          []string
	}{
		{name: "confidence at threshold", txs: confTie, minConfidence: 0.6, want: []string{"A => B"}},
		{name: "confidence above threshold", txs: confTie, minConfidence: 0.61, want: []string{}},
		{name: "lift at threshold", txs: liftTie, minConfidence: 0.6, minLift: 1.2, want: []string{"A => B", "B => A"}},
		{name: "lift above threshold", txs: liftTie, minConfidence: 0.6, minLift: 1.21, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := generate(t, mined(t, tt.txs, 0.1), len(tt.txs), tt.minConfidence, tt.minLift)
			got := make([]string, len(rs))
			for i, r := range rs {
				got[i] = r.String()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateLiftFromCounts(t *testing.T) {
	txs := concat(
		repeat(11, model.Transaction{"A", "B"}),
		repeat(4, model.Transaction{"A"}),
		repeat(3, model.Transaction{}),
	)
	rs := generate(t, mined(t, txs, 0.1), len(txs), 0.6, 1.2)
	require.Len(t, rs, 2)

	ab, ok := find(rs, items("A"), items("B"))
	require.True(t, ok)
	assert.Equal(t, 1.2, ab.Lift)
	assert.Equal(t, 11.0/15.0, ab.Confidence)

	ba, ok := find(rs, items("B"), items("A"))
	require.True(t, ok)
	assert.Equal(t, 1.2, ba.Lift)
	assert.Equal(t, 1.0, ba.Confidence)
}

func TestGenerateUnsortedItems(t *testing.T) {
	in := []model.Itemset{
		{Items: items("A"), Count: 3, Support: 0.6},
		{Items: items("B"), Count: 2, Support: 0.4},
		{Items: items("B", "A"), Count: 2, Support: 0.4},
	}
	rs := generate(t, in, 5, 0, 0)
	require.Len(t, rs, 2)
	assert.Equal(t, "A => B", rs[0].String())
	assert.Equal(t, "B => A", rs[1].String())
	assert.Equal(t, items("B", "A"), in[2].Items, "input must not be reordered")
}

func TestGenerateNoPairs(t *testing.T) {
	rs := generate(t, []model.Itemset{
		{Items: items("A"), Count: 3, Support: 0.6},
		{Items: items("B"), Count: 2, Support: 0.4},
	}, 5, 0, 0)
	assert.Empty(t, rs)
	assert.NotNil(t, rs)

	rs = generate(t, nil, 0, 0.5, 1)
	assert.Empty(t, rs)
}

func TestGenerateSkipsMissingSubsets(t *testing.T) {
	// B is not in the input, so A=>B and B=>A cannot be scored.
	rs := generate(t, []model.Itemset{
		{Items: items("A"), Count: 3, Support: 0.6},
		{Items: items("A", "B"), Count: 2, Support: 0.4},
	}, 5, 0, 0)
	assert.Empty(t, rs)
}

func TestGenerateRejectsWideItemsets(t *testing.T) {
	wide := make([]model.Item, 64)
	for i := range wide {
		wide[i] = model.Item(rune('a' + i%26))
	}
	g, err := New(0.5, 1)
	require.NoError(t, err)
	_, err = g.Generate([]model.Itemset{{Items: wide, Count: 1, Support: 1}}, 1)
	assert.Error(t, err)
}

func TestNewRejectsInvalidThresholds(t *testing.T) {
	_, err := New(1.5, 1)
	assert.True(t, errors.Is(err, model.ErrInvalidConfig))
	_, err = New(-0.1, 1)
	assert.True(t, errors.Is(err, model.ErrInvalidConfig))
	_, err = New(0.5, -1)
	assert.True(t, errors.Is(err, model.ErrInvalidConfig))
}

func TestMetrics(t *testing.T) {
	u := model.Itemset{Items: items("A", "B"), Count: 3, Support: 0.3}
	a := model.Itemset{Items: items("A"), Count: 5, Support: 0.5}
	c := model.Itemset{Items: items("B"), Count: 4, Support: 0.4}

	r := Metrics(u, a, c, 10)
	assert.InDelta(t, 0.6, r.Confidence, 1e-12)
	assert.InDelta(t, 1.5, r.Lift, 1e-12)
	assert.InDelta(t, 0.1, r.Leverage, 1e-12)
	assert.InDelta(t, 1.5, r.Conviction, 1e-12)
	// leverage / max(0.3*0.5, 0.5*0.1)
	assert.InDelta(t, 0.1/0.15, r.ZhangsMetric, 1e-12)
}

func TestMetricsFullConfidence(t *testing.T) {
	u := model.Itemset{Items: items("A", "B"), Count: 2, Support: 0.4}
	a := model.Itemset{Items: items("A"), Count: 2, Support: 0.4}
	c := model.Itemset{Items: items("B"), Count: 4, Support: 0.8}

	r := Metrics(u, a, c, 5)
	assert.Equal(t, 1.0, r.Confidence)
	assert.True(t, math.IsInf(r.Conviction, 1))
}

func randomTransactions(seed uint64, n int, universe []string, p float64) []model.Transaction {
	rng := rand.New(rand.NewPCG(seed, seed))
	txs := make([]model.Transaction, n)
	for i := range txs {
		for _, it := range universe {
			if rng.Float64() < p {
				txs[i] = append(txs[i], model.Item(it))
			}
		}
	}
	return txs
}

func TestGenerateRuleValidity(t *testing.T) {
	txs := randomTransactions(9, 120, []string{"a", "b", "c", "d", "e", "f"}, 0.5)
	itemsets := mined(t, txs, 0.1)
	known := make(map[string]bool, len(itemsets))
	for _, s := range itemsets {
		known[s.Key()] = true
	}

	rs := generate(t, itemsets, len(txs), 0.5, 1.0)
	require.NotEmpty(t, rs)

	seen := make(map[string]bool)
	for _, r := range rs {
		assert.NotEmpty(t, r.Antecedent)
		assert.NotEmpty(t, r.Consequent)
		for _, x := range r.Antecedent {
			assert.NotContains(t, r.Consequent, x)
		}
		assert.True(t, known[model.ItemsKey(r.Union())], "union must be frequent")
		assert.GreaterOrEqual(t, r.Confidence, 0.5)
		assert.LessOrEqual(t, r.Confidence, 1.0)
		assert.GreaterOrEqual(t, r.Lift, 1.0)
		assert.False(t, seen[r.Key()], "duplicate rule %s", r)
		seen[r.Key()] = true
	}
}

func TestGenerateThresholdMonotone(t *testing.T) {
	txs := randomTransactions(21, 150, []string{"a", "b", "c", "d", "e", "f", "g"}, 0.45)
	itemsets := mined(t, txs, 0.05)

	prev := math.MaxInt
	for _, conf := range []float64{0, 0.2, 0.4, 0.6, 0.8, 1} {
		n := len(generate(t, itemsets, len(txs), conf, 0))
		assert.LessOrEqual(t, n, prev)
		prev = n
	}

	prev = math.MaxInt
	for _, lift := range []float64{0, 0.5, 1, 1.2, 2} {
		n := len(generate(t, itemsets, len(txs), 0, lift))
		assert.LessOrEqual(t, n, prev)
		prev = n
	}
}

func TestGenerateParallelMatchesSequential(t *testing.T) {
	txs := randomTransactions(33, 200, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, 0.5)
	itemsets := mined(t, txs, 0.05)

	seq := generate(t, itemsets, len(txs), 0.3, 0)
	par := generate(t, itemsets, len(txs), 0.3, 0, WithWorkers(8))
	assert.Equal(t, seq, par)
}
