package report

import (
	"math"

	"github.com/roach88/incimine/internal/analysis"
	"github.com/roach88/incimine/internal/miner"
	"github.com/roach88/incimine/internal/model"
)

// RuleView is the JSON shape of a rule.
type RuleView struct {
	Antecedents       []model.Item `json:"antecedents"`
	Consequents       []model.Item `json:"consequents"`
	AntecedentSupport float64      `json:"antecedent_support"`
	ConsequentSupport float64      `json:"consequent_support"`
	Support           float64      `json:"support"`
	Count             int64        `json:"count"`
	Confidence        float64      `json:"confidence"`
	Lift              float64      `json:"lift"`
	Leverage          float64      `json:"leverage"`
	Conviction        *float64     `json:"conviction"` // null when infinite
	ZhangsMetric      float64      `json:"zhangs_metric"`
}

// NewRuleView converts r for JSON output.
func NewRuleView(r model.Rule) RuleView {
	v := RuleView{
		Antecedents:       r.Antecedent,
		Consequents:       r.Consequent,
		AntecedentSupport: r.AntecedentSupport,
		ConsequentSupport: r.ConsequentSupport,
		Support:           r.Support,
		Count:             r.Count,
		Confidence:        r.Confidence,
		Lift:              r.Lift,
		Leverage:          r.Leverage,
		ZhangsMetric:      r.ZhangsMetric,
	}
	if !math.IsInf(r.Conviction, 0) && !math.IsNaN(r.Conviction) {
		c := r.Conviction
		v.Conviction = &c
	}
	return v
}

// RuleViews converts each rule, preserving order.
func RuleViews(rules []model.Rule) []RuleView {
	out := make([]RuleView, len(rules))
	for i, r := range rules {
		out[i] = NewRuleView(r)
	}
	return out
}

// ResultView is the JSON shape of an analysis run.
type ResultView struct {
	RunID        string             `json:"run_id"`
	Thresholds   model.Thresholds   `json:"thresholds"`
	Transactions int                `json:"transactions"`
	UniverseSize int                `json:"universe_size"`
	ItemsetCount int                `json:"itemset_count"`
	RuleCount    int                `json:"rule_count"`
	Levels       []miner.LevelStats `json:"levels"`
	Top          []RuleView         `json:"top"`
	Conclusions  []Conclusion       `json:"conclusions"`
	Suggestions  []string           `json:"suggestions,omitempty"`
	Fingerprint  string             `json:"fingerprint"`
	Saved        *SavedFiles        `json:"saved,omitempty"`
}

// NewResultView summarizes res. Saved is left for the caller to fill.
func NewResultView(res *analysis.Result) ResultView {
	return ResultView{
		RunID:        res.RunID,
		Thresholds:   res.Thresholds,
		Transactions: res.TransactionCount,
		UniverseSize: res.UniverseSize,
		ItemsetCount: len(res.Itemsets),
		RuleCount:    len(res.Rules),
		Levels:       res.Levels,
		Top:          RuleViews(res.Top),
		Conclusions:  BuildConclusions(res.Top),
		Suggestions:  res.Suggestions(),
		Fingerprint:  res.Fingerprint,
	}
}
