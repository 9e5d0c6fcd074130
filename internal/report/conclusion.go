package report

import (
	"fmt"

	"github.com/roach88/incimine/internal/model"
)

// Conclusion is a top rule formatted for citation.
type Conclusion struct {
	Number      int    `json:"conclusion_number"`
	Antecedents string `json:"antecedents"`
	Consequents string `json:"consequents"`
	Confidence  string `json:"confidence"` // "72.5%"
	Support     string `json:"support"`    // "10.0%"
	Lift        string `json:"lift"`       // "1.35x"
}

// BuildConclusions numbers the given rules from 1 in order.
func BuildConclusions(top []model.Rule) []Conclusion {
	out := make([]Conclusion, len(top))
	for i, r := range top {
		out[i] = Conclusion{
			Number:      i + 1,
			Antecedents: model.JoinItems(r.Antecedent),
			Consequents: model.JoinItems(r.Consequent),
			Confidence:  percent(r.Confidence),
			Support:     percent(r.Support),
			Lift:        fmt.Sprintf("%.2fx", r.Lift),
		}
	}
	return out
}

// FormatConclusion renders rule r as conclusion number index.
func FormatConclusion(r model.Rule, index int) string {
	return fmt.Sprintf("\nConclusion #%d:\nWhen incidents have [%s], \nthere is a %.1f%% probability that they also have [%s].\n(Support: %.1f%%, Lift: %.2fx)\n",
		index,
		model.JoinItems(r.Antecedent),
		r.Confidence*100,
		model.JoinItems(r.Consequent),
		r.Support*100,
		r.Lift,
	)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
