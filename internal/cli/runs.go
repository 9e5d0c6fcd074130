package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/incimine/internal/model"
	"github.com/roach88/incimine/internal/report"
	"github.com/roach88/incimine/internal/store"
)

// RunRulesResult is the payload of "runs <run-id>".
type RunRulesResult struct {
	Run   store.RunRecord   `json:"run"`
	Rules []report.RuleView `json:"rules"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded mining runs, or one run's ranked rules",
		Long: `List mining runs recorded with "analyze --record", newest first.
Given a run ID, print that run's rules in rank order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			_, st, err := rootOpts.openStore()
			if err != nil {
				return failure(f, err)
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context())
			if err != nil {
				return failure(f, err)
			}
			if len(args) == 0 {
				return outputRuns(f, runs)
			}

			i := slices.IndexFunc(runs, func(r store.RunRecord) bool { return r.ID == args[0] })
			if i < 0 {
				return failure(f, fmt.Errorf("run %s: %w", args[0], store.ErrNotFound))
			}
			rules, err := st.ReadRunRules(cmd.Context(), args[0])
			if err != nil {
				return failure(f, err)
			}
			return outputRunRules(f, runs[i], rules)
		},
	}
}

func outputRuns(f *OutputFormatter, runs []store.RunRecord) error {
	if f.JSON() {
		return f.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No recorded runs.")
		return nil
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tTRANSACTIONS\tITEMSETS\tRULES\tMIN_SUPPORT\tMIN_CONFIDENCE\tMIN_LIFT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%g\t%g\t%g\n",
			r.ID, r.CreatedAt, r.Transactions, r.Itemsets, r.Rules,
			r.Thresholds.MinSupport, r.Thresholds.MinConfidence, r.Thresholds.MinLift)
	}
	return tw.Flush()
}

func outputRunRules(f *OutputFormatter, run store.RunRecord, rules []model.Rule) error {
	if f.JSON() {
		return f.Success(RunRulesResult{Run: run, Rules: report.RuleViews(rules)})
	}
	fmt.Fprintf(f.Writer, "Run %s (%s): %d rules\n", run.ID, run.CreatedAt, len(rules))
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCONFIDENCE\tLIFT\tSUPPORT\tRULE")
	for i, r := range rules {
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%.3f\t%s\n", i+1, r.Confidence, r.Lift, r.Support, r)
	}
	return tw.Flush()
}
