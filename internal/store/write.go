package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/incimine/internal/model"
)

// CreateIncident inserts an incident and returns its assigned ID.
// Empty attributes are stored as NULL. A missing CreatedAt is set to the
// current UTC time.
func (s *Store) CreateIncident(ctx context.Context, inc model.Incident) (int64, error) {
	createdAt := inc.CreatedAt
	if createdAt == "" {
		createdAt = s.now().UTC().Format(time.RFC3339Nano)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO incidents
		(title, description, severity, category, priority, status, metadata,
		 phone, websiteType, incidentFrequency, serviceAffected, rootCauseCategory, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nullString(inc.Title),
		nullString(inc.Description),
		nullString(inc.Severity),
		nullString(inc.Category),
		nullString(inc.Priority),
		nullString(inc.Status),
		nullString(inc.Metadata),
		nullString(inc.Phone),
		nullString(inc.WebsiteType),
		nullString(inc.IncidentFrequency),
		nullString(inc.ServiceAffected),
		nullString(inc.RootCauseCategory),
		nullString(inc.Tags),
		createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("create incident: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create incident: last insert id: %w", err)
	}
	return id, nil
}

// CreateIncidents inserts incidents in a single transaction.
func (s *Store) CreateIncidents(ctx context.Context, incs []model.Incident) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create incidents: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO incidents
		(title, description, severity, category, priority, status, metadata,
		 phone, websiteType, incidentFrequency, serviceAffected, rootCauseCategory, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("create incidents: prepare: %w", err)
	}
	defer stmt.Close()

	now := s.now().UTC().Format(time.RFC3339Nano)
	ids := make([]int64, 0, len(incs))
	for i, inc := range incs {
		createdAt := inc.CreatedAt
		if createdAt == "" {
			createdAt = now
		}
		result, err := stmt.ExecContext(ctx,
			nullString(inc.Title),
			nullString(inc.Description),
			nullString(inc.Severity),
			nullString(inc.Category),
			nullString(inc.Priority),
			nullString(inc.Status),
			nullString(inc.Metadata),
			nullString(inc.Phone),
			nullString(inc.WebsiteType),
			nullString(inc.IncidentFrequency),
			nullString(inc.ServiceAffected),
			nullString(inc.RootCauseCategory),
			nullString(inc.Tags),
			createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("create incidents: row %d: %w", i+1, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("create incidents: row %d: last insert id: %w", i+1, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create incidents: commit: %w", err)
	}
	return ids, nil
}

// UpdateStatus sets an incident's status. Returns ErrNotFound if no incident
// has the given ID.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE incidents SET status = ? WHERE id = ?`, nullString(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update status: incident %d: %w", id, ErrNotFound)
	}
	return nil
}

// Reset deletes every incident and restarts ID assignment at 1.
// Recorded mining runs are kept. Returns the number of incidents deleted.
func (s *Store) Reset(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("reset: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `DELETE FROM incidents`)
	if err != nil {
		return 0, fmt.Errorf("reset: delete incidents: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset: rows affected: %w", err)
	}

	// sqlite_sequence exists once any AUTOINCREMENT table has been created.
	if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'incidents'`); err != nil {
		return 0, fmt.Errorf("reset: sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("reset: commit: %w", err)
	}
	return n, nil
}

// RunRecord is the summary row of a recorded mining run.
type RunRecord struct {
	ID            string           `json:"id"`
	CreatedAt     string           `json:"created_at"`
	Thresholds    model.Thresholds `json:"thresholds"`
	Transactions  int              `json:"transactions"`
	Itemsets      int              `json:"itemsets"`
	Rules         int              `json:"rules"`
	Fingerprint   string           `json:"fingerprint"`
	EngineVersion string           `json:"engine_version"`
}

// SaveRun records a run and its ranked rules atomically. Rules are stored
// with rank 1..n in the given order.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: saving the same run ID
// twice keeps the first copy and reports inserted=false.
func (s *Store) SaveRun(ctx context.Context, run RunRecord, ranked []model.Rule) (inserted bool, err error) {
	if run.ID == "" {
		return false, fmt.Errorf("save run: empty run id")
	}
	if run.CreatedAt == "" {
		run.CreatedAt = s.now().UTC().Format(time.RFC3339Nano)
	}
	if run.EngineVersion == "" {
		run.EngineVersion = model.EngineVersion
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("save run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO mining_runs
		(id, created_at, min_support, min_confidence, min_lift, top_n,
		 transactions, itemset_count, rule_count, fingerprint, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.CreatedAt,
		run.Thresholds.MinSupport,
		run.Thresholds.MinConfidence,
		run.Thresholds.MinLift,
		run.Thresholds.TopN,
		run.Transactions,
		run.Itemsets,
		run.Rules,
		run.Fingerprint,
		run.EngineVersion,
	)
	if err != nil {
		return false, fmt.Errorf("save run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save run: rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_rules
		(run_id, rank, antecedents, consequents, antecedent_support, consequent_support,
		 support, count, confidence, lift, leverage, conviction, zhangs_metric)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return false, fmt.Errorf("save run: prepare rules: %w", err)
	}
	defer stmt.Close()

	for i, r := range ranked {
		ante, err := marshalItems(r.Antecedent)
		if err != nil {
			return false, fmt.Errorf("save run: rule %d: %w", i+1, err)
		}
		cons, err := marshalItems(r.Consequent)
		if err != nil {
			return false, fmt.Errorf("save run: rule %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, i+1, ante, cons,
			r.AntecedentSupport, r.ConsequentSupport,
			r.Support, r.Count, r.Confidence, r.Lift, r.Leverage,
			nullConviction(r.Conviction), r.ZhangsMetric,
		); err != nil {
			return false, fmt.Errorf("save run: rule %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("save run: commit: %w", err)
	}
	return true, nil
}
