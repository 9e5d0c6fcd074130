package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/roach88/incimine/internal/model"
)

// marshalItems converts an itemset side to canonical JSON TEXT for storage.
func marshalItems(items []model.Item) (string, error) {
	if items == nil {
		items = []model.Item{}
	}
	data, err := model.MarshalCanonical(items)
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}
	return string(data), nil
}

// unmarshalItems parses a stored JSON array of item labels.
func unmarshalItems(data string) ([]model.Item, error) {
	var raw []string
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	items := make([]model.Item, len(raw))
	for i, s := range raw {
		items[i] = model.Item(s)
	}
	return items, nil
}

// nullString maps "" to SQL NULL. Absent incident attributes are stored as
// NULL, matching rows written by the original tooling.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullConviction stores an infinite conviction as NULL; SQLite REAL has no
// portable infinity.
func nullConviction(v float64) sql.NullFloat64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func convictionFromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.Inf(1)
	}
	return v.Float64
}
