package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/message"

	"github.com/roach88/incimine/internal/analysis"
)

// WriteText prints the console report of an analysis: run summary, then
// either relaxation hints or the numbered conclusions.
func WriteText(w io.Writer, res *analysis.Result, p *message.Printer) error {
	var b strings.Builder
	banner(&b, "ASSOCIATION RULE MINING ANALYSIS")

	th := res.Thresholds
	fmt.Fprintf(&b, "Run:               %s\n", res.RunID)
	fmt.Fprintf(&b, "Thresholds:        min_support=%g min_confidence=%g min_lift=%g top_n=%d\n",
		th.MinSupport, th.MinConfidence, th.MinLift, th.TopN)
	b.WriteString(p.Sprintf("Transactions:      %d\n", res.TransactionCount))
	b.WriteString(p.Sprintf("Distinct items:    %d\n", res.UniverseSize))
	b.WriteString(p.Sprintf("Frequent itemsets: %d\n", len(res.Itemsets)))
	b.WriteString(p.Sprintf("Association rules: %d\n", len(res.Rules)))
	fmt.Fprintf(&b, "Fingerprint:       %s\n\n", res.Fingerprint)

	if hints := res.Suggestions(); len(hints) > 0 {
		if res.TransactionCount > 0 {
			b.WriteString("No strong association rules found.\n")
			b.WriteString("Try adjusting parameters:\n")
		}
		for _, h := range hints {
			fmt.Fprintf(&b, "  - %s\n", h)
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	banner(&b, "TOP RESEARCH CONCLUSIONS")
	for i, r := range res.Top {
		b.WriteString(FormatConclusion(r, i+1))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
