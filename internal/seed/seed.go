// Package seed generates sample incidents for demos and tests.
//
// Generation is driven by an explicit *rand.Rand and reference time so the
// same seed and clock always produce the same incidents.
package seed

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/roach88/incimine/internal/model"
)

// DefaultCount is the number of incidents seeded when none is given.
const DefaultCount = 300

// WindowDays is how far back created_at timestamps may fall.
const WindowDays = 180

var (
	titles = []string{
		"Server Downtime", "Database Connection Failure", "High Memory Usage",
		"Network Latency Issues", "Authentication Error", "API Response Timeout",
		"SSL Certificate Expired", "Disk Space Critical", "Service Unavailable",
		"Load Balancer Failure", "Cache Server Down", "Email Service Disruption",
		"Payment Gateway Error", "CDN Performance Degradation", "DNS Resolution Failed",
		"Application Crash", "Memory Leak Detected", "CPU Spike", "Backup Failure",
		"Security Breach Attempt", "DDoS Attack", "Data Corruption", "Sync Error",
		"Timeout Exception", "Connection Pool Exhausted",
	}
	descriptions = []string{
		"Users unable to access the service",
		"System experiencing performance degradation",
		"Critical error reported by monitoring system",
		"Multiple users reporting intermittent issues",
		"Automated alert triggered for resource threshold",
		"Third-party service integration failure",
		"Unexpected spike in error rates detected",
		"Routine maintenance escalated to incident",
		"Security vulnerability detected and patched",
		"Infrastructure component malfunctioning",
		"Service degradation affecting user experience",
		"Database query performance issues",
		"Network connectivity problems",
		"API endpoints returning errors",
		"Authentication service timeout",
	}

	Severities   = []string{"Critical", "High", "Medium", "Low"}
	Categories   = []string{"Infrastructure", "Application", "Network", "Security", "Database", "Integration"}
	Priorities   = []string{"P1", "P2", "P3", "P4"}
	Statuses     = []string{"Open", "In Progress", "Resolved", "Closed", "Investigating"}
	WebsiteTypes = []string{"E-commerce", "SaaS", "Blog", "Corporate", "API Service", "Mobile App Backend"}
	Frequencies  = []string{"First Time", "Occasional", "Frequent", "Recurring"}
	Services     = []string{"Web Server", "Database", "API", "Authentication", "Payment", "Email", "Storage", "CDN"}
	RootCauses   = []string{"Hardware Failure", "Software Bug", "Configuration Error", "Network Issue", "Human Error", "Capacity Planning", "Third Party"}

	tagPairs = []string{
		"urgent,customer-facing",
		"internal,low-impact",
		"maintenance,scheduled",
		"security,critical",
		"performance,optimization",
		"bug,frontend",
		"backend,database",
		"networking,infrastructure",
		"monitoring,alert",
		"deployment,rollback",
		"hotfix,patch",
		"incident,major",
		"outage,partial",
		"degraded,service",
	}

	regions = []string{"US-East", "US-West", "EU", "APAC", "South America"}
)

// Metadata is the JSON document stored in an incident's metadata column.
type Metadata struct {
	Reporter                string `json:"reporter"`
	AffectedUsers           int    `json:"affectedUsers"`
	Region                  string `json:"region"`
	IncidentNumber          string `json:"incidentNumber"`
	AssignedTo              string `json:"assignedTo"`
	EstimatedResolutionTime string `json:"estimatedResolutionTime"`
}

// Generator produces sample incidents.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New returns a generator drawing from rng with timestamps relative to now.
func New(rng *rand.Rand, now time.Time) *Generator {
	return &Generator{rng: rng, now: now.UTC()}
}

// NewSeeded is New with a PCG source built from seed.
func NewSeeded(seed uint64, now time.Time) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now)
}

// Generate returns count incidents numbered from 1. IDs are left zero for
// the store to assign.
func (g *Generator) Generate(count int) ([]model.Incident, error) {
	if count < 0 {
		return nil, fmt.Errorf("seed count must be >= 0, got %d", count)
	}
	out := make([]model.Incident, 0, count)
	for i := 1; i <= count; i++ {
		inc, err := g.Incident(i)
		if err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, nil
}

// Incident builds the n-th sample incident.
func (g *Generator) Incident(n int) (model.Incident, error) {
	// Draw order is fixed; changing it changes every seeded dataset.
	title := fmt.Sprintf("%s #%d", g.pick(titles), n)
	description := g.pick(descriptions)
	severity := g.pick(Severities)
	category := g.pick(Categories)
	priority := g.pick(Priorities)
	status := g.pick(Statuses)

	meta, err := json.Marshal(g.metadata(n))
	if err != nil {
		return model.Incident{}, fmt.Errorf("marshal metadata: %w", err)
	}

	return model.Incident{
		Title:             title,
		Description:       description,
		Severity:          severity,
		Category:          category,
		Priority:          priority,
		Status:            status,
		Metadata:          string(meta),
		Phone:             g.phone(),
		WebsiteType:       g.pick(WebsiteTypes),
		IncidentFrequency: g.pick(Frequencies),
		ServiceAffected:   g.pick(Services),
		RootCauseCategory: g.pick(RootCauses),
		Tags:              g.pick(tagPairs),
		CreatedAt:         g.createdAt(),
	}, nil
}

func (g *Generator) pick(xs []string) string {
	return xs[g.rng.IntN(len(xs))]
}

// between returns a value in [lo, lo+span).
func (g *Generator) between(lo, span int) int {
	return lo + g.rng.IntN(span)
}

func (g *Generator) metadata(n int) Metadata {
	return Metadata{
		Reporter:                fmt.Sprintf("user%d@example.com", g.rng.IntN(100)),
		AffectedUsers:           g.rng.IntN(10000),
		Region:                  g.pick(regions),
		IncidentNumber:          fmt.Sprintf("INC-%06d", n),
		AssignedTo:              fmt.Sprintf("engineer%d@company.com", g.rng.IntN(50)),
		EstimatedResolutionTime: fmt.Sprintf("%d hours", g.between(1, 24)),
	}
}

// phone returns one of three regional formats, or "" for no phone.
func (g *Generator) phone() string {
	switch g.rng.IntN(4) {
	case 0:
		return fmt.Sprintf("+1-%d-%d-%d", g.between(100, 900), g.between(100, 900), g.between(1000, 9000))
	case 1:
		return fmt.Sprintf("+91-%d-%d", g.between(10000, 90000), g.between(10000, 90000))
	case 2:
		return fmt.Sprintf("+44-%d-%d", g.between(1000, 9000), g.between(100000, 900000))
	default:
		return ""
	}
}

func (g *Generator) createdAt() string {
	daysAgo := g.rng.IntN(WindowDays)
	return g.now.Add(-time.Duration(daysAgo) * 24 * time.Hour).Format(time.RFC3339Nano)
}
