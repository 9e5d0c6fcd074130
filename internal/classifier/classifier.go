// Package classifier assigns a category and priority to new incidents with
// keyword rules over the title and description.
package classifier

import (
	"slices"
	"strings"
	"unicode"
)

// DefaultSeverity is used when an incident arrives without one.
const DefaultSeverity = "medium"

// GeneralCategory is returned when no keyword rule scores.
const GeneralCategory = "General"

// Priorities, highest first.
const (
	PriorityP0 = "P0"
	PriorityP1 = "P1"
	PriorityP2 = "P2"
)

type categoryRule struct {
	category string
	keywords []string
}

// Rule order is also the tie-break order: the first category to reach the
// highest score wins.
var categoryRules = []categoryRule{
	{"Database", []string{"database", "db", "sql", "postgres", "mysql", "mongod", "mongodb"}},
	{"Network", []string{"network", "latency", "dns", "timeout", "connection", "packet", "bandwidth"}},
	{"Authentication", []string{"auth", "login", "signin", "token", "oauth", "permission", "unauthorized"}},
	{"Payments", []string{"payment", "checkout", "card", "stripe", "paypal", "transaction"}},
	{"API", []string{"api", "endpoint", "response", "500", "502", "503", "gateway"}},
	{"UI", []string{"ui", "frontend", "css", "javascript", "react", "angular", "visual"}},
	{"Storage", []string{"disk", "storage", "s3", "bucket", "file", "filesystem"}},
}

var (
	escalationWords = []string{"outage", "down", "failed", "data loss", "data-loss", "panic", "urgent", "critical"}
	p1Words         = []string{"timeout", "latency", "error", "500", "502", "503", "slow", "degraded"}
)

// Input is the subset of an incident the classifier reads.
type Input struct {
	Title             string
	Description       string
	Severity          string
	IncidentFrequency string
	ServiceAffected   string
	RootCauseCategory string
	Tags              string
}

// Output is the classifier's decision.
type Output struct {
	Category string
	Priority string
	Severity string
}

// Classify categorizes and prioritizes one incident.
func Classify(in Input) Output {
	tokens := append(Tokens(in.Title), Tokens(in.Description)...)

	severity := in.Severity
	if severity == "" {
		severity = DefaultSeverity
	}

	return Output{
		Category: category(tokens, in),
		Priority: priority(tokens, in),
		Severity: severity,
	}
}

// Tokens lowercases s and splits it on every run of characters outside
// [a-z0-9].
func Tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func category(tokens []string, in Input) string {
	counts := make(map[string]int, len(categoryRules))
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if slices.Contains(tokens, kw) {
				counts[rule.category]++
			}
		}
	}

	if rc := strings.ToLower(in.RootCauseCategory); rc != "" {
		if boosted := capitalize(rc); hasCategory(boosted) {
			counts[boosted]++
		}
	}
	if sa := strings.ToLower(in.ServiceAffected); sa != "" {
		if strings.Contains(sa, "payment") {
			counts["Payments"]++
		}
		if strings.Contains(sa, "api") {
			counts["API"]++
		}
	}

	best, bestCount := GeneralCategory, 0
	for _, rule := range categoryRules {
		if counts[rule.category] > bestCount {
			best, bestCount = rule.category, counts[rule.category]
		}
	}
	return best
}

func priority(tokens []string, in Input) string {
	switch strings.ToLower(in.Severity) {
	case "critical", "4", "urgent":
		return PriorityP0
	case "high", "3":
		return PriorityP1
	}

	switch strings.ToLower(in.IncidentFrequency) {
	case "continuous":
		return PriorityP0
	case "intermittent":
		return PriorityP1
	}

	for _, w := range escalationWords {
		if slices.Contains(tokens, w) {
			return PriorityP0
		}
	}

	if in.Tags != "" {
		for _, tag := range strings.Split(strings.ToLower(in.Tags), ",") {
			switch strings.TrimSpace(tag) {
			case "urgent", "panic":
				return PriorityP0
			}
		}
	}

	for _, w := range p1Words {
		if slices.Contains(tokens, w) {
			return PriorityP1
		}
	}
	return PriorityP2
}

func hasCategory(name string) bool {
	for _, rule := range categoryRules {
		if rule.category == name {
			return true
		}
	}
	return false
}

// capitalize upper-cases the first rune only.
func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}
