// Package rules derives association rules from mined frequent itemsets.
//
// For every itemset I with |I| >= 2, each non-empty proper subset A becomes
// an antecedent and I \ A the consequent. Rules are kept when both
// confidence and lift meet their thresholds. Output is in discovery order:
// input itemset order, then ascending subset bitmask.
package rules

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/roach88/incimine/internal/model"
)

// maxItemsetLen is the widest itemset whose subsets fit in a uint64 mask.
const maxItemsetLen = 63

// Generator turns frequent itemsets into rules.
type Generator struct {
	minConfidence float64
	minLift       float64
	workers       int
}

// Option configures a Generator.
type Option func(*Generator)

// WithWorkers generates rules for independent itemsets concurrently.
func WithWorkers(n int) Option {
	return func(g *Generator) { g.workers = n }
}

// New creates a Generator. Thresholds outside their domains are configuration
// errors.
func New(minConfidence, minLift float64, opts ...Option) (*Generator, error) {
	if err := model.ValidateMinConfidence(minConfidence); err != nil {
		return nil, err
	}
	if err := model.ValidateMinLift(minLift); err != nil {
		return nil, err
	}

	g := &Generator{minConfidence: minConfidence, minLift: minLift, workers: 1}
	for _, opt := range opts {
		opt(g)
	}
	if g.workers < 1 {
		g.workers = 1
	}
	return g, nil
}

// Generate returns every rule meeting the thresholds. total is the number of
// transactions the itemsets were counted over; lift is computed from it and
// the integer counts. Items within an itemset may arrive in any order. No
// itemset of size two or more yields an empty, non-nil slice.
func (g *Generator) Generate(itemsets []model.Itemset, total int) ([]model.Rule, error) {
	sets := make([]model.Itemset, len(itemsets))
	known := make(map[string]model.Itemset, len(itemsets))
	for i, s := range itemsets {
		if s.Len() > maxItemsetLen {
			return nil, fmt.Errorf("rules: itemset of %d items exceeds limit of %d", s.Len(), maxItemsetLen)
		}
		s = sorted(s)
		sets[i] = s
		known[s.Key()] = s
	}

	perSet := make([][]model.Rule, len(sets))
	if g.workers <= 1 {
		for i, s := range sets {
			perSet[i] = g.fromItemset(s, known, total)
		}
	} else {
		// known is read-only here and each worker writes its own perSet slot.
		var wg sync.WaitGroup
		sem := make(chan struct{}, g.workers)
		for i, s := range sets {
			if s.Len() < 2 {
				continue
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, s model.Itemset) {
				defer wg.Done()
				defer func() { <-sem }()
				perSet[i] = g.fromItemset(s, known, total)
			}(i, s)
		}
		wg.Wait()
	}

	out := []model.Rule{}
	for _, rs := range perSet {
		out = append(out, rs...)
	}
	return out, nil
}

// sorted returns s with its items in canonical order, copying only when
// they are not already sorted.
func sorted(s model.Itemset) model.Itemset {
	if slices.IsSorted(s.Items) {
		return s
	}
	s.Items = model.SortItems(slices.Clone(s.Items))
	return s
}

// fromItemset enumerates the antecedent/consequent splits of one itemset.
// s.Items must be sorted so that both halves of a split match known keys.
func (g *Generator) fromItemset(s model.Itemset, known map[string]model.Itemset, total int) []model.Rule {
	n := s.Len()
	if n < 2 {
		return nil
	}

	var out []model.Rule
	full := uint64(1)<<uint(n) - 1
	for mask := uint64(1); mask < full; mask++ {
		ante, cons := split(s.Items, mask)

		a, ok := known[model.ItemsKey(ante)]
		if !ok {
			continue
		}
		c, ok := known[model.ItemsKey(cons)]
		if !ok {
			continue
		}

		r := Metrics(s, a, c, total)
		if r.Confidence < g.minConfidence || r.Lift < g.minLift {
			continue
		}
		out = append(out, r)
	}
	return out
}

// split partitions items by mask: set bits go to the antecedent.
// Both halves keep the canonical order of items.
func split(items []model.Item, mask uint64) (ante, cons []model.Item) {
	for i, it := range items {
		if mask&(1<<uint(i)) != 0 {
			ante = append(ante, it)
		} else {
			cons = append(cons, it)
		}
	}
	return ante, cons
}

// Metrics computes every rule metric for antecedent a and consequent c,
// whose union is the itemset u, over total transactions. Confidence and lift
// are single divisions of integer products when the counts are present, so a
// ratio equal to a threshold compares equal to it.
func Metrics(u, a, c model.Itemset, total int) model.Rule {
	s, sa, sc := u.Support, a.Support, c.Support

	conf := s / sa
	lift := s / (sa * sc)
	if u.Count > 0 && a.Count > 0 && c.Count > 0 && total > 0 {
		conf = float64(u.Count) / float64(a.Count)
		lift = float64(u.Count) * float64(total) / (float64(a.Count) * float64(c.Count))
	}
	leverage := s - sa*sc

	conviction := math.Inf(1)
	if conf < 1 {
		conviction = (1 - sc) / (1 - conf)
	}

	zhang := 0.0
	if denom := math.Max(s*(1-sa), sa*(sc-s)); denom != 0 {
		zhang = leverage / denom
	}

	return model.Rule{
		Antecedent:        a.Items,
		Consequent:        c.Items,
		AntecedentSupport: sa,
		ConsequentSupport: sc,
		Support:           s,
		Count:             u.Count,
		Confidence:        conf,
		Lift:              lift,
		Leverage:          leverage,
		Conviction:        conviction,
		ZhangsMetric:      zhang,
	}
}
