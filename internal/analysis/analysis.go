// Package analysis runs the full mining pipeline over a transaction list:
// encode, mine frequent itemsets, generate rules, rank, and select the top N.
//
// All thresholds are validated when the Analyzer is built, so a run either
// completes for every level or fails before any work starts. Empty results
// are not errors; Suggestions explains which threshold to relax.
package analysis

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/incimine/internal/encoder"
	"github.com/roach88/incimine/internal/miner"
	"github.com/roach88/incimine/internal/model"
	"github.com/roach88/incimine/internal/rank"
	"github.com/roach88/incimine/internal/rules"
)

// Config holds every parameter of an analysis run.
type Config struct {
	Thresholds model.Thresholds
	Workers    int // goroutines for counting and rule generation; <2 means sequential
	MaxLen     int // maximum itemset size; 0 means unbounded
}

// Validate checks thresholds and mining options.
func (c Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Workers < 0 {
		return &model.ConfigError{Field: "workers", Value: c.Workers, Reason: "must be >= 0"}
	}
	if c.MaxLen < 0 {
		return &model.ConfigError{Field: "max_len", Value: c.MaxLen, Reason: "must be >= 0"}
	}
	return nil
}

// Analyzer runs analyses with a fixed configuration.
type Analyzer struct {
	cfg    Config
	miner  *miner.Miner
	rules  *rules.Generator
	ids    RunIDGenerator
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRunIDGenerator overrides the default UUIDv7 run IDs.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(a *Analyzer) { a.ids = g }
}

// WithLogger sets the logger for pipeline progress.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// New validates cfg and builds an Analyzer.
func New(cfg Config, opts ...Option) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Analyzer{
		cfg:    cfg,
		ids:    UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}

	m, err := miner.New(cfg.Thresholds.MinSupport,
		miner.WithMaxLen(cfg.MaxLen),
		miner.WithWorkers(cfg.Workers),
		miner.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	g, err := rules.New(cfg.Thresholds.MinConfidence, cfg.Thresholds.MinLift,
		rules.WithWorkers(cfg.Workers),
	)
	if err != nil {
		return nil, err
	}
	a.miner = m
	a.rules = g
	return a, nil
}

// Result is the complete output of one run.
type Result struct {
	RunID            string             `json:"run_id"`
	Thresholds       model.Thresholds   `json:"thresholds"`
	TransactionCount int                `json:"transaction_count"`
	UniverseSize     int                `json:"universe_size"`
	Itemsets         []model.Itemset    `json:"itemsets"`
	Rules            []model.Rule       `json:"rules"`  // discovery order
	Ranked           []model.Rule       `json:"ranked"` // confidence desc, lift desc
	Top              []model.Rule       `json:"top"`
	Levels           []miner.LevelStats `json:"levels"`
	Fingerprint      string             `json:"fingerprint"`
}

// NoItemsets reports whether nothing met min_support.
func (r *Result) NoItemsets() bool {
	return len(r.Itemsets) == 0
}

// NoRules reports whether no rule met the confidence and lift thresholds.
func (r *Result) NoRules() bool {
	return len(r.Rules) == 0
}

// Suggestions returns threshold relaxation hints for an empty result.
func (r *Result) Suggestions() []string {
	th := r.Thresholds
	switch {
	case r.TransactionCount == 0:
		return []string{"No transactions to analyze. Load or seed incidents first."}
	case r.NoItemsets():
		return []string{fmt.Sprintf("Lower min_support (currently %g)", th.MinSupport)}
	case r.NoRules():
		return []string{
			fmt.Sprintf("Lower min_support (currently %g)", th.MinSupport),
			fmt.Sprintf("Lower min_confidence (currently %g)", th.MinConfidence),
			fmt.Sprintf("Lower min_lift (currently %g)", th.MinLift),
		}
	}
	return nil
}

// Run mines txs and returns the ranked result.
func (a *Analyzer) Run(txs []model.Transaction) (*Result, error) {
	th := a.cfg.Thresholds

	mat := encoder.Encode(txs)
	a.logger.Info("transactions encoded", "transactions", mat.NumTransactions(), "items", mat.NumItems())

	a.logger.Info("running apriori", "min_support", th.MinSupport)
	mres, err := a.miner.Mine(mat)
	if err != nil {
		return nil, fmt.Errorf("mine itemsets: %w", err)
	}
	a.logger.Info("frequent itemsets found", "count", len(mres.Itemsets))

	a.logger.Info("generating association rules", "min_confidence", th.MinConfidence, "min_lift", th.MinLift)
	rs, err := a.rules.Generate(mres.Itemsets, mres.Transactions)
	if err != nil {
		return nil, fmt.Errorf("generate rules: %w", err)
	}
	a.logger.Info("association rules generated", "count", len(rs))

	ranked := rank.Rules(rs)

	fp, err := model.ResultFingerprint(mat.NumTransactions(), th, mres.Itemsets, rs)
	if err != nil {
		return nil, fmt.Errorf("fingerprint result: %w", err)
	}

	return &Result{
		RunID:            a.ids.Generate(),
		Thresholds:       th,
		TransactionCount: mat.NumTransactions(),
		UniverseSize:     mat.NumItems(),
		Itemsets:         mres.Itemsets,
		Rules:            rs,
		Ranked:           ranked,
		Top:              rank.Top(ranked, th.TopN),
		Levels:           mres.Levels,
		Fingerprint:      fp,
	}, nil
}
