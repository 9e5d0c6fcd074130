package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/roach88/incimine/internal/model"
)

// RuleColumns is the header of the all-rules table.
var RuleColumns = []string{
	"antecedents",
	"consequents",
	"antecedent support",
	"consequent support",
	"support",
	"confidence",
	"lift",
	"leverage",
	"conviction",
	"zhangs_metric",
}

// ConclusionColumns is the header of the conclusions table.
var ConclusionColumns = []string{
	"conclusion_number",
	"antecedents",
	"consequents",
	"confidence",
	"support",
	"lift",
}

// ItemsetColumns is the header of the itemsets table.
var ItemsetColumns = []string{"support", "itemsets", "count", "length"}

// WriteRulesCSV writes one row per rule in the given order.
func WriteRulesCSV(w io.Writer, rules []model.Rule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RuleColumns); err != nil {
		return fmt.Errorf("write rules header: %w", err)
	}
	for _, r := range rules {
		row := []string{
			model.JoinItems(r.Antecedent),
			model.JoinItems(r.Consequent),
			formatMetric(r.AntecedentSupport),
			formatMetric(r.ConsequentSupport),
			formatMetric(r.Support),
			formatMetric(r.Confidence),
			formatMetric(r.Lift),
			formatMetric(r.Leverage),
			formatMetric(r.Conviction),
			formatMetric(r.ZhangsMetric),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write rule row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteConclusionsCSV writes one row per conclusion.
func WriteConclusionsCSV(w io.Writer, conclusions []Conclusion) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ConclusionColumns); err != nil {
		return fmt.Errorf("write conclusions header: %w", err)
	}
	for _, c := range conclusions {
		row := []string{
			strconv.Itoa(c.Number),
			c.Antecedents,
			c.Consequents,
			c.Confidence,
			c.Support,
			c.Lift,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write conclusion row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteItemsetsCSV writes one row per itemset in the given order.
func WriteItemsetsCSV(w io.Writer, itemsets []model.Itemset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ItemsetColumns); err != nil {
		return fmt.Errorf("write itemsets header: %w", err)
	}
	for _, s := range itemsets {
		row := []string{
			formatMetric(s.Support),
			s.String(),
			strconv.FormatInt(s.Count, 10),
			strconv.Itoa(s.Len()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write itemset row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatMetric prints the shortest representation that round-trips, and
// "inf" for an infinite conviction.
func formatMetric(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
