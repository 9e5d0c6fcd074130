package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/incimine/internal/analysis"
	"github.com/roach88/incimine/internal/model"
	"github.com/roach88/incimine/internal/testutil"
)

// Harness executes scenarios.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to each analysis.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a harness. Logs are discarded by default.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(scenario)
}

// Run executes a scenario and evaluates its assertions.
//
// An analysis error is returned as an error unless the scenario expects
// it; assertion failures are reported in the Result.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	result := NewResult()

	res, err := h.analyze(scenario)
	if scenario.ExpectError != "" {
		switch {
		case err == nil:
			result.AddError(fmt.Sprintf("expected error containing %q, analysis succeeded", scenario.ExpectError))
		case !strings.Contains(err.Error(), scenario.ExpectError):
			result.AddError(fmt.Sprintf("expected error containing %q, got %q", scenario.ExpectError, err.Error()))
		}
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result.Analysis = res
	for _, msg := range EvaluateAssertions(res, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) analyze(scenario *Scenario) (*analysis.Result, error) {
	a, err := analysis.New(analysis.Config{
		Thresholds: scenario.Thresholds,
		Workers:    scenario.Workers,
		MaxLen:     scenario.MaxLen,
	},
		analysis.WithRunIDGenerator(testutil.NewFixedRunIDGenerator("scenario-"+scenario.Name)),
		analysis.WithLogger(h.logger),
	)
	if err != nil {
		return nil, err
	}
	return a.Run(Transactions(scenario))
}

// Transactions converts the scenario's item lists.
func Transactions(scenario *Scenario) []model.Transaction {
	txs := make([]model.Transaction, len(scenario.Transactions))
	for i, labels := range scenario.Transactions {
		tx := make(model.Transaction, len(labels))
		for j, l := range labels {
			tx[j] = model.Item(l)
		}
		txs[i] = tx
	}
	return txs
}
