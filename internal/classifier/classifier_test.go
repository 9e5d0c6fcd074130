package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"db", "timeout", "on", "api", "v2"}, Tokens("DB timeout on /api/v2!"))
	assert.Empty(t, Tokens(""))
	assert.Empty(t, Tokens("--- !!"))
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want string
	}{
		{"database keywords", Input{Title: "Postgres replica lag", Description: "sql queries slow on db"}, "Database"},
		{"network keywords", Input{Title: "DNS resolution timeout"}, "Network"},
		{"no keywords", Input{Title: "Something odd happened"}, GeneralCategory},
		{"root cause boost", Input{Title: "Odd", RootCauseCategory: "storage"}, "Storage"},
		{"root cause unknown category", Input{Title: "Odd", RootCauseCategory: "configuration error"}, GeneralCategory},
		{"service payment boost", Input{Title: "Odd", ServiceAffected: "Payment Service"}, "Payments"},
		{"service api boost", Input{Title: "Odd", ServiceAffected: "Public API"}, "API"},
		{"tie goes to earlier rule", Input{Title: "db latency"}, "Database"},
		{"boost breaks tie", Input{Title: "db latency", RootCauseCategory: "network"}, "Network"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in).Category)
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want string
	}{
		{"critical severity", Input{Severity: "Critical"}, PriorityP0},
		{"numeric 4", Input{Severity: "4"}, PriorityP0},
		{"high severity", Input{Severity: "HIGH", Title: "outage"}, PriorityP1},
		{"continuous frequency", Input{IncidentFrequency: "Continuous"}, PriorityP0},
		{"intermittent frequency", Input{IncidentFrequency: "intermittent", Title: "outage"}, PriorityP1},
		{"escalation word", Input{Title: "Checkout down"}, PriorityP0},
		{"urgent tag", Input{Tags: "db, Urgent"}, PriorityP0},
		{"p1 word", Input{Description: "requests are slow"}, PriorityP1},
		{"default", Input{Title: "cosmetic glitch"}, PriorityP2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in).Priority)
		})
	}
}

func TestClassifySeverityDefault(t *testing.T) {
	assert.Equal(t, DefaultSeverity, Classify(Input{}).Severity)
	assert.Equal(t, "High", Classify(Input{Severity: "High"}).Severity)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Network", capitalize("network"))
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "Élan", capitalize("élan"))
}
