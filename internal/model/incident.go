package model

// Incident is one persisted incident record.
// Optional text columns use "" for NULL.
type Incident struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Severity          string `json:"severity"`
	Category          string `json:"category"`
	Priority          string `json:"priority"`
	Status            string `json:"status"`
	Metadata          string `json:"metadata,omitempty"`
	Phone             string `json:"phone,omitempty"`
	WebsiteType       string `json:"website_type,omitempty"`
	IncidentFrequency string `json:"incident_frequency,omitempty"`
	ServiceAffected   string `json:"service_affected,omitempty"`
	RootCauseCategory string `json:"root_cause_category,omitempty"`
	Tags              string `json:"tags,omitempty"` // comma-separated
	CreatedAt         string `json:"created_at"`     // RFC 3339
}
