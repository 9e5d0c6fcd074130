package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/incimine/internal/model"
)

func rule(name string, conf, lift float64) model.Rule {
	return model.Rule{
		Antecedent: []model.Item{model.Item(name)},
		Consequent: []model.Item{"X"},
		Confidence: conf,
		Lift:       lift,
	}
}

func names(rs []model.Rule) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r.Antecedent[0])
	}
	return out
}

func TestRulesOrder(t *testing.T) {
	in := []model.Rule{
		rule("a", 0.7, 1.1),
		rule("b", 0.9, 1.0),
		rule("c", 0.7, 1.5),
		rule("d", 0.9, 2.0),
	}
	assert.Equal(t, []string{"d", "b", "c", "a"}, names(Rules(in)))
}

func TestRulesStableOnTies(t *testing.T) {
	in := []model.Rule{
		rule("first", 0.8, 1.3),
		rule("second", 0.8, 1.3),
		rule("third", 0.8, 1.3),
	}
	assert.Equal(t, []string{"first", "second", "third"}, names(Rules(in)))
}

func TestRulesDoesNotMutateInput(t *testing.T) {
	in := []model.Rule{rule("a", 0.1, 1), rule("b", 0.9, 1)}
	out := Rules(in)

	assert.Equal(t, []string{"a", "b"}, names(in))
	assert.Equal(t, []string{"b", "a"}, names(out))
}

func TestRulesEmpty(t *testing.T) {
	out := Rules(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestTop(t *testing.T) {
	ranked := Rules([]model.Rule{rule("a", 0.9, 1), rule("b", 0.8, 1), rule("c", 0.7, 1)})

	assert.Equal(t, []string{"a", "b"}, names(Top(ranked, 2)))
	assert.Len(t, Top(ranked, 10), 3)
	assert.Empty(t, Top(ranked, 0))
	assert.Empty(t, Top(ranked, -3))
	assert.Empty(t, Top(nil, 5))
}

func TestTopViewCannotGrowIntoRanked(t *testing.T) {
	ranked := Rules([]model.Rule{rule("a", 0.9, 1), rule("b", 0.8, 1)})
	top := Top(ranked, 1)
	top = append(top, rule("z", 0, 0))

	require.Len(t, top, 2)
	assert.Equal(t, "b", string(ranked[1].Antecedent[0]))
}

func TestItemsets(t *testing.T) {
	in := []model.Itemset{
		{Items: []model.Item{"A", "B"}, Count: 3},
		{Items: []model.Item{"C"}, Count: 2},
		{Items: []model.Item{"A"}, Count: 3},
		{Items: []model.Item{"B"}, Count: 4},
	}
	out := Itemsets(in)

	require.Len(t, out, 4)
	assert.Equal(t, "B", out[0].String())
	assert.Equal(t, "A", out[1].String())
	assert.Equal(t, "A, B", out[2].String())
	assert.Equal(t, "C", out[3].String())
	assert.Equal(t, "A, B", in[0].String(), "input untouched")

	assert.Len(t, TopItemsets(out, 2), 2)
	assert.Empty(t, TopItemsets(out, 0))
}
