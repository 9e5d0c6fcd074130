package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/incimine/internal/report"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dataset statistics",
		Long: `Show the incident count and the value distribution of severity,
category, status and website type.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			_, st, err := rootOpts.openStore()
			if err != nil {
				return failure(f, err)
			}
			defer st.Close()

			stats, err := report.CollectStats(cmd.Context(), st, report.DefaultStatsColumns)
			if err != nil {
				return failure(f, err)
			}

			if f.JSON() {
				return f.Success(stats)
			}
			return report.WriteStats(f.Writer, stats, report.NewPrinter())
		},
	}
}
