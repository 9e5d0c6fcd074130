package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/incimine/internal/analysis"
	"github.com/roach88/incimine/internal/rank"
)

// DefaultPrefix names saved result files when no prefix is configured.
const DefaultPrefix = "apriori_results"

// TimestampLayout is the file name timestamp, e.g. 20250314_092653.
const TimestampLayout = "20060102_150405"

// SavedFiles lists the paths SaveResults wrote.
type SavedFiles struct {
	Rules       string `json:"rules"`
	Conclusions string `json:"conclusions"`
	Itemsets    string `json:"itemsets"`
}

// SaveResults writes the ranked rules, the top-N conclusions, and the ranked
// frequent itemsets as CSV files under dir. dir is created if missing.
func SaveResults(dir, prefix string, now time.Time, res *analysis.Result) (*SavedFiles, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	ts := now.Format(TimestampLayout)
	files := &SavedFiles{
		Rules:       filepath.Join(dir, fmt.Sprintf("%s_all_rules_%s.csv", prefix, ts)),
		Conclusions: filepath.Join(dir, fmt.Sprintf("%s_conclusions_%s.csv", prefix, ts)),
		Itemsets:    filepath.Join(dir, fmt.Sprintf("%s_itemsets_%s.csv", prefix, ts)),
	}

	if err := writeFile(files.Rules, func(w io.Writer) error {
		return WriteRulesCSV(w, res.Ranked)
	}); err != nil {
		return nil, err
	}
	if err := writeFile(files.Conclusions, func(w io.Writer) error {
		return WriteConclusionsCSV(w, BuildConclusions(res.Top))
	}); err != nil {
		return nil, err
	}
	if err := writeFile(files.Itemsets, func(w io.Writer) error {
		return WriteItemsetsCSV(w, rank.Itemsets(res.Itemsets))
	}); err != nil {
		return nil, err
	}

	return files, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
