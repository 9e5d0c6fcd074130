package model

import (
	"slices"
	"strconv"
	"strings"
)

// Item is an atomic categorical label such as "Severity:High".
// The empty string is treated as an absent label.
type Item string

// Transaction is the set of items observed on one incident record.
type Transaction []Item

// Itemset is a set of items with its absolute and relative support.
type Itemset struct {
	Items   []Item  `json:"items"`   // canonical order
	Count   int64   `json:"count"`   // transactions containing every item
	Support float64 `json:"support"` // Count / total transactions
}

// Len returns the number of items in the set.
func (s Itemset) Len() int {
	return len(s.Items)
}

// Key returns a collision-free map key for the itemset.
func (s Itemset) Key() string {
	return ItemsKey(s.Items)
}

// String joins the items with ", " for display.
func (s Itemset) String() string {
	return JoinItems(s.Items)
}

// Rule is an association rule Antecedent => Consequent.
type Rule struct {
	Antecedent        []Item  `json:"antecedent"`
	Consequent        []Item  `json:"consequent"`
	AntecedentSupport float64 `json:"antecedent_support"`
	ConsequentSupport float64 `json:"consequent_support"`
	Support           float64 `json:"support"` // support of Antecedent ∪ Consequent
	Count             int64   `json:"count"`   // transactions containing Antecedent ∪ Consequent
	Confidence        float64 `json:"confidence"`
	Lift              float64 `json:"lift"`
	Leverage          float64 `json:"leverage"`
	Conviction        float64 `json:"-"` // +Inf when Confidence == 1
	ZhangsMetric      float64 `json:"zhangs_metric"`
}

// Key identifies a rule by its ordered (antecedent, consequent) pair.
func (r Rule) Key() string {
	return ItemsKey(r.Antecedent) + "=>" + ItemsKey(r.Consequent)
}

// Union returns antecedent ∪ consequent in canonical order.
func (r Rule) Union() []Item {
	items := make([]Item, 0, len(r.Antecedent)+len(r.Consequent))
	items = append(items, r.Antecedent...)
	items = append(items, r.Consequent...)
	return SortItems(items)
}

// String renders "A, B => C".
func (r Rule) String() string {
	return JoinItems(r.Antecedent) + " => " + JoinItems(r.Consequent)
}

// SortItems sorts items in place into canonical order and returns them.
func SortItems(items []Item) []Item {
	slices.Sort(items)
	return items
}

// ItemsKey builds a length-prefixed key so that no two distinct item lists
// share a key, whatever characters the labels contain.
func ItemsKey(items []Item) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString(strconv.Itoa(len(it)))
		b.WriteByte(':')
		b.WriteString(string(it))
	}
	return b.String()
}

// JoinItems joins item labels with ", ".
func JoinItems(items []Item) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = string(it)
	}
	return strings.Join(parts, ", ")
}
