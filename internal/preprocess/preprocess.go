// Package preprocess converts incident records into mining transactions.
//
// Each non-missing categorical attribute becomes one "Prefix:value" item and
// each comma-separated tag becomes a "Tag:<tag>" item after trimming. Values
// are otherwise kept verbatim.
package preprocess

import (
	"strings"

	"github.com/roach88/incimine/internal/model"
)

// Item prefixes, in the order items are emitted.
const (
	PrefixSeverity    = "Severity:"
	PrefixCategory    = "Category:"
	PrefixPriority    = "Priority:"
	PrefixStatus      = "Status:"
	PrefixWebsiteType = "WebsiteType:"
	PrefixFrequency   = "Frequency:"
	PrefixService     = "Service:"
	PrefixRootCause   = "RootCause:"
	PrefixTag         = "Tag:"
)

// FromIncident returns the transaction for one incident. An incident with no
// categorical values yields an empty transaction.
func FromIncident(inc model.Incident) model.Transaction {
	fields := []struct {
		prefix string
		value  string
	}{
		{PrefixSeverity, inc.Severity},
		{PrefixCategory, inc.Category},
		{PrefixPriority, inc.Priority},
		{PrefixStatus, inc.Status},
		{PrefixWebsiteType, inc.WebsiteType},
		{PrefixFrequency, inc.IncidentFrequency},
		{PrefixService, inc.ServiceAffected},
		{PrefixRootCause, inc.RootCauseCategory},
	}

	tx := model.Transaction{}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		tx = append(tx, model.Item(f.prefix+f.value))
	}
	for _, tag := range SplitTags(inc.Tags) {
		tx = append(tx, model.Item(PrefixTag+tag))
	}
	return tx
}

// Transactions converts every incident, keeping input order and empty rows.
func Transactions(incidents []model.Incident) []model.Transaction {
	out := make([]model.Transaction, len(incidents))
	for i, inc := range incidents {
		out[i] = FromIncident(inc)
	}
	return out
}

// SplitTags splits a comma-separated tag list, trimming whitespace and
// dropping empty entries.
func SplitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}
