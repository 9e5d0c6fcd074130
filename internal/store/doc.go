// Package store provides SQLite-backed storage for incidents and recorded
// mining runs.
//
// # Tables
//
//   - incidents: one row per incident; optional attributes are NULL when absent
//   - mining_runs: one row per recorded analysis, keyed by run ID
//   - run_rules: the ranked rules of a run, keyed by (run_id, rank)
//
// # Ordering
//
//   - ListIncidents is newest first (created_at DESC, id DESC)
//   - LoadIncidents is id ASC; this is the transaction order fed to mining
//   - ReadRunRules is rank ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema changes are tracked with PRAGMA user_version. Databases created by
// earlier tools that lack the optional incident columns are upgraded in
// place on Open.
package store
