package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/incimine/internal/model"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestIncident returns an incident with every attribute populated.
func createTestIncident(title, severity, createdAt string) model.Incident {
	return model.Incident{
		Title:             title,
		Description:       "test description",
		Severity:          severity,
		Category:          "Database",
		Priority:          "P1",
		Status:            "Open",
		Metadata:          `{"reporter":"user1@example.com"}`,
		Phone:             "+1-555-555-5555",
		WebsiteType:       "SaaS",
		IncidentFrequency: "Frequent",
		ServiceAffected:   "API",
		RootCauseCategory: "Software Bug",
		Tags:              "backend,database",
		CreatedAt:         createdAt,
	}
}
