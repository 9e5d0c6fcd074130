package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainResult = "incimine/result/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ResultFingerprint computes a content-addressed ID for a mining result.
//
// Itemsets and rules are hashed as sets: both are sorted by key first, so
// enumeration order does not affect the fingerprint. Only integer counts are
// hashed; supports and metrics are derived from them and the transaction total.
// Thresholds are hashed in their shortest round-trip decimal form.
func ResultFingerprint(transactions int, th Thresholds, itemsets []Itemset, rules []Rule) (string, error) {
	sets := make([]Itemset, len(itemsets))
	copy(sets, itemsets)
	slices.SortFunc(sets, func(a, b Itemset) int { return strings.Compare(a.Key(), b.Key()) })

	setList := make([]any, len(sets))
	for i, s := range sets {
		setList[i] = map[string]any{
			"items": s.Items,
			"count": s.Count,
		}
	}

	rs := make([]Rule, len(rules))
	copy(rs, rules)
	slices.SortFunc(rs, func(a, b Rule) int { return strings.Compare(a.Key(), b.Key()) })

	ruleList := make([]any, len(rs))
	for i, r := range rs {
		ruleList[i] = map[string]any{
			"antecedent": r.Antecedent,
			"consequent": r.Consequent,
			"count":      r.Count,
		}
	}

	obj := map[string]any{
		"transactions": transactions,
		"thresholds": map[string]any{
			"min_support":    formatFloat(th.MinSupport),
			"min_confidence": formatFloat(th.MinConfidence),
			"min_lift":       formatFloat(th.MinLift),
			"top_n":          th.TopN,
		},
		"itemsets": setList,
		"rules":    ruleList,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ResultFingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// MustResultFingerprint is like ResultFingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustResultFingerprint(transactions int, th Thresholds, itemsets []Itemset, rules []Rule) string {
	fp, err := ResultFingerprint(transactions, th, itemsets, rules)
	if err != nil {
		panic(err)
	}
	return fp
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
