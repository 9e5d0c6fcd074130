package testutil

import "github.com/roach88/incimine/internal/model"

// BasketTransactions is the five-transaction A/B/C dataset used across the
// mining tests. Every single item has support 0.8, every pair 0.6, and
// {A,B,C} 0.4.
func BasketTransactions() []model.Transaction {
	return []model.Transaction{
		{"A", "B"},
		{"A", "B", "C"},
		{"A", "C"},
		{"B", "C"},
		{"A", "B", "C"},
	}
}

// SampleIncidents returns a small incident set with one strong association:
// every Critical incident is a Database incident with priority P1.
func SampleIncidents() []model.Incident {
	return []model.Incident{
		{Title: "DB down #1", Severity: "Critical", Category: "Database", Priority: "P1", Status: "Open", Tags: "backend,database", CreatedAt: "2025-01-01T00:00:00Z"},
		{Title: "DB down #2", Severity: "Critical", Category: "Database", Priority: "P1", Status: "Resolved", Tags: "backend,database", CreatedAt: "2025-01-02T00:00:00Z"},
		{Title: "DB down #3", Severity: "Critical", Category: "Database", Priority: "P1", Status: "Open", Tags: "urgent,customer-facing", CreatedAt: "2025-01-03T00:00:00Z"},
		{Title: "CSS glitch", Severity: "Low", Category: "Application", Priority: "P4", Status: "Closed", Tags: "bug,frontend", CreatedAt: "2025-01-04T00:00:00Z"},
		{Title: "Slow page", Severity: "Medium", Category: "Network", Priority: "P3", Status: "Open", Tags: "performance,optimization", CreatedAt: "2025-01-05T00:00:00Z"},
	}
}
