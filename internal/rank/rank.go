// Package rank orders rules and itemsets for reporting.
//
// Ranking never mutates its input: callers get a new slice, and equal keys
// keep their discovery order so identical input always ranks identically.
package rank

import (
	"cmp"
	"slices"

	"github.com/roach88/incimine/internal/model"
)

// Rules orders rules by confidence descending, then lift descending.
func Rules(rules []model.Rule) []model.Rule {
	out := slices.Clone(rules)
	if out == nil {
		out = []model.Rule{}
	}
	slices.SortStableFunc(out, func(a, b model.Rule) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		return cmp.Compare(b.Lift, a.Lift)
	})
	return out
}

// Top returns the first n ranked rules, fewer if the set is smaller.
// n <= 0 yields an empty view.
func Top(ranked []model.Rule, n int) []model.Rule {
	if n <= 0 {
		return []model.Rule{}
	}
	return ranked[:min(n, len(ranked)):min(n, len(ranked))]
}

// Itemsets orders itemsets by support descending, then size ascending.
func Itemsets(itemsets []model.Itemset) []model.Itemset {
	out := slices.Clone(itemsets)
	if out == nil {
		out = []model.Itemset{}
	}
	slices.SortStableFunc(out, func(a, b model.Itemset) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Len(), b.Len())
	})
	return out
}

// TopItemsets returns the first n ranked itemsets.
func TopItemsets(ranked []model.Itemset, n int) []model.Itemset {
	if n <= 0 {
		return []model.Itemset{}
	}
	return ranked[:min(n, len(ranked)):min(n, len(ranked))]
}
