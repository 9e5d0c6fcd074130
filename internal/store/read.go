package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/roach88/incimine/internal/model"
)

const incidentColumns = `id, title, description, severity, category, priority, status, metadata,
	phone, websiteType, incidentFrequency, serviceAffected, rootCauseCategory, tags, created_at`

// CountColumns are the incident columns ValueCounts accepts.
var CountColumns = []string{
	"severity",
	"category",
	"priority",
	"status",
	"websiteType",
	"incidentFrequency",
	"serviceAffected",
	"rootCauseCategory",
}

// ValueCount is one distinct value of a column and how many incidents hold it.
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// ListIncidents returns all incidents, newest first.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListIncidents(ctx context.Context) ([]model.Incident, error) {
	return s.queryIncidents(ctx, `SELECT `+incidentColumns+` FROM incidents ORDER BY created_at DESC, id DESC`)
}

// LoadIncidents returns all incidents in ID order. This is the order
// transactions are built in for analysis.
func (s *Store) LoadIncidents(ctx context.Context) ([]model.Incident, error) {
	return s.queryIncidents(ctx, `SELECT `+incidentColumns+` FROM incidents ORDER BY id ASC`)
}

// GetIncident returns one incident by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetIncident(ctx context.Context, id int64) (model.Incident, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id = ?`, id)
	return scanIncident(row)
}

// CountIncidents returns the number of stored incidents.
func (s *Store) CountIncidents(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM incidents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count incidents: %w", err)
	}
	return n, nil
}

// ValueCounts returns the distinct non-empty values of column with their
// incident counts, most frequent first and ties by value.
// column must be one of CountColumns.
func (s *Store) ValueCounts(ctx context.Context, column string) ([]ValueCount, error) {
	if !slices.Contains(CountColumns, column) {
		return nil, fmt.Errorf("value counts: unknown column %q", column)
	}

	// column is whitelisted above; it cannot be bound as a parameter.
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %[1]s, COUNT(*) AS n
		FROM incidents
		WHERE %[1]s IS NOT NULL AND %[1]s != ''
		GROUP BY %[1]s
		ORDER BY n DESC, %[1]s COLLATE BINARY ASC
	`, column))
	if err != nil {
		return nil, fmt.Errorf("value counts %s: %w", column, err)
	}
	defer rows.Close()

	counts := []ValueCount{}
	for rows.Next() {
		var vc ValueCount
		if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
			return nil, fmt.Errorf("scan value count: %w", err)
		}
		counts = append(counts, vc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate value counts: %w", err)
	}
	return counts, nil
}

// ListRuns returns recorded mining runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, min_support, min_confidence, min_lift, top_n,
		       transactions, itemset_count, rule_count, fingerprint, engine_version
		FROM mining_runs
		ORDER BY created_at DESC, id COLLATE BINARY DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.ID, &r.CreatedAt,
			&r.Thresholds.MinSupport, &r.Thresholds.MinConfidence, &r.Thresholds.MinLift, &r.Thresholds.TopN,
			&r.Transactions, &r.Itemsets, &r.Rules, &r.Fingerprint, &r.EngineVersion,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRunRules returns the ranked rules recorded for a run, best first.
// Returns an empty slice (not nil) for unknown runs.
func (s *Store) ReadRunRules(ctx context.Context, runID string) ([]model.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT antecedents, consequents, antecedent_support, consequent_support,
		       support, count, confidence, lift, leverage, conviction, zhangs_metric
		FROM run_rules
		WHERE run_id = ?
		ORDER BY rank ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run rules: %w", err)
	}
	defer rows.Close()

	rules := []model.Rule{}
	for rows.Next() {
		var (
			r          model.Rule
			ante, cons string
			conviction sql.NullFloat64
		)
		if err := rows.Scan(
			&ante, &cons, &r.AntecedentSupport, &r.ConsequentSupport,
			&r.Support, &r.Count, &r.Confidence, &r.Lift, &r.Leverage, &conviction, &r.ZhangsMetric,
		); err != nil {
			return nil, fmt.Errorf("scan run rule: %w", err)
		}
		if r.Antecedent, err = unmarshalItems(ante); err != nil {
			return nil, err
		}
		if r.Consequent, err = unmarshalItems(cons); err != nil {
			return nil, err
		}
		r.Conviction = convictionFromNull(conviction)
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rules: %w", err)
	}
	return rules, nil
}

func (s *Store) queryIncidents(ctx context.Context, query string, args ...any) ([]model.Incident, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	incidents := []model.Incident{}
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return incidents, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanIncident returns sql.ErrNoRows unwrapped so callers can compare it.
func scanIncident(row rowScanner) (model.Incident, error) {
	var (
		inc  model.Incident
		cols [14]sql.NullString
	)
	dest := make([]any, 0, 15)
	dest = append(dest, &inc.ID)
	for i := range cols {
		dest = append(dest, &cols[i])
	}
	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return model.Incident{}, err
		}
		return model.Incident{}, fmt.Errorf("scan incident: %w", err)
	}

	inc.Title = cols[0].String
	inc.Description = cols[1].String
	inc.Severity = cols[2].String
	inc.Category = cols[3].String
	inc.Priority = cols[4].String
	inc.Status = cols[5].String
	inc.Metadata = cols[6].String
	inc.Phone = cols[7].String
	inc.WebsiteType = cols[8].String
	inc.IncidentFrequency = cols[9].String
	inc.ServiceAffected = cols[10].String
	inc.RootCauseCategory = cols[11].String
	inc.Tags = cols[12].String
	inc.CreatedAt = cols[13].String
	return inc, nil
}
