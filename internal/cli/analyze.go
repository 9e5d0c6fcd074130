package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/incimine/internal/analysis"
	"github.com/roach88/incimine/internal/config"
	"github.com/roach88/incimine/internal/preprocess"
	"github.com/roach88/incimine/internal/report"
	"github.com/roach88/incimine/internal/store"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	MinSupport    float64
	MinConfidence float64
	MinLift       float64
	TopN          int
	MaxLen        int
	Workers       int
	Save          bool
	OutDir        string
	Prefix        string
	Record        bool
}

// AnalyzeResult is the JSON payload of the analyze command.
type AnalyzeResult struct {
	report.ResultView
	Recorded bool `json:"recorded"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Mine association rules from stored incidents",
		Long: `Mine association rules from every stored incident.

Each incident becomes one transaction of attribute items such as
"Severity:High", "Service:Payment" and "Tag:urgent". Frequent itemsets are
found with Apriori, rules are filtered by confidence and lift, ranked by
confidence then lift, and the top N are reported as conclusions.

Threshold flags override the config file and INCIMINE_* variables.

Examples:
  incimine analyze
  incimine analyze --min-support 0.1 --min-lift 1.5 --top-n 10
  incimine analyze --save --out ./results --record
  incimine analyze --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, cmd)
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&opts.MinSupport, "min-support", 0, "minimum itemset support in (0, 1]")
	fl.Float64Var(&opts.MinConfidence, "min-confidence", 0, "minimum rule confidence in [0, 1]")
	fl.Float64Var(&opts.MinLift, "min-lift", 0, "minimum rule lift (>= 0)")
	fl.IntVar(&opts.TopN, "top-n", 0, "number of conclusions to report (>= 0)")
	fl.IntVar(&opts.MaxLen, "max-len", 0, "largest itemset size (0 for unbounded)")
	fl.IntVar(&opts.Workers, "workers", 0, "counting goroutines (0 for one per CPU)")
	fl.BoolVar(&opts.Save, "save", false, "write rules, conclusions and itemsets as CSV")
	fl.StringVarP(&opts.OutDir, "out", "o", "", "directory for saved CSV files")
	fl.StringVar(&opts.Prefix, "prefix", "", "file name prefix for saved CSV files")
	fl.BoolVar(&opts.Record, "record", false, "record the run and its ranked rules in the database")

	return cmd
}

// overrides returns the config changes for flags set on the command line.
func (o *AnalyzeOptions) overrides(cmd *cobra.Command) func(*config.Config) {
	fl := cmd.Flags()
	return func(cfg *config.Config) {
		if fl.Changed("min-support") {
			cfg.Thresholds.MinSupport = o.MinSupport
		}
		if fl.Changed("min-confidence") {
			cfg.Thresholds.MinConfidence = o.MinConfidence
		}
		if fl.Changed("min-lift") {
			cfg.Thresholds.MinLift = o.MinLift
		}
		if fl.Changed("top-n") {
			cfg.Thresholds.TopN = o.TopN
		}
		if fl.Changed("max-len") {
			cfg.Mining.MaxLen = o.MaxLen
		}
		if fl.Changed("workers") {
			cfg.Mining.Workers = o.Workers
		}
		if fl.Changed("out") {
			cfg.Output.Dir = o.OutDir
			cfg.Output.Save = true
		}
		if fl.Changed("prefix") {
			cfg.Output.Prefix = o.Prefix
		}
		if o.Save {
			cfg.Output.Save = true
		}
	}
}

func runAnalyze(opts *AnalyzeOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	logger := opts.logger(f.GetErrWriter())
	ctx := cmd.Context()

	cfg, st, err := opts.openStore(opts.overrides(cmd))
	if err != nil {
		return failure(f, err)
	}
	defer st.Close()

	aopts := []analysis.Option{analysis.WithLogger(logger)}
	if opts.RunIDs != nil {
		aopts = append(aopts, analysis.WithRunIDGenerator(opts.RunIDs))
	}
	analyzer, err := analysis.New(analysis.Config{
		Thresholds: cfg.Thresholds,
		Workers:    cfg.Mining.Workers,
		MaxLen:     cfg.Mining.MaxLen,
	}, aopts...)
	if err != nil {
		return failure(f, err)
	}

	incidents, err := st.LoadIncidents(ctx)
	if err != nil {
		return failure(f, err)
	}
	logger.Info("loaded incidents", "count", len(incidents), "db", cfg.Database)

	res, err := analyzer.Run(preprocess.Transactions(incidents))
	if err != nil {
		return failure(f, err)
	}

	now := opts.now()
	out := AnalyzeResult{ResultView: report.NewResultView(res)}

	if cfg.Output.Save {
		saved, err := report.SaveResults(cfg.Output.Dir, cfg.Output.Prefix, now, res)
		if err != nil {
			return failure(f, err)
		}
		out.Saved = saved
		logger.Info("results saved", "dir", cfg.Output.Dir)
	}

	if opts.Record {
		inserted, err := st.SaveRun(ctx, store.RunRecord{
			ID:           res.RunID,
			CreatedAt:    now.UTC().Format(time.RFC3339Nano),
			Thresholds:   res.Thresholds,
			Transactions: res.TransactionCount,
			Itemsets:     len(res.Itemsets),
			Rules:        len(res.Rules),
			Fingerprint:  res.Fingerprint,
		}, res.Ranked)
		if err != nil {
			return failure(f, err)
		}
		out.Recorded = inserted
	}

	if f.JSON() {
		return f.Success(out)
	}

	if err := report.WriteText(f.Writer, res, report.NewPrinter()); err != nil {
		return err
	}
	if out.Saved != nil {
		fmt.Fprintln(f.Writer, "\n✓ Results saved:")
		fmt.Fprintf(f.Writer, "  - %s\n  - %s\n  - %s\n", out.Saved.Rules, out.Saved.Conclusions, out.Saved.Itemsets)
	}
	if out.Recorded {
		fmt.Fprintf(f.Writer, "✓ Run %s recorded\n", res.RunID)
	}
	return nil
}
