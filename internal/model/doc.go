// Package model provides the record types shared by every incimine package.
//
// This package contains type definitions and small pure helpers only. All
// other internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Items are opaque labels; nothing here trims, folds or normalizes them
//   - Itemset.Items is always kept in canonical (byte-wise ascending) order,
//     so set identity is slice equality
//   - Itemsets and rules are immutable once mined
//   - Fingerprints hash integer counts only; floats never enter canonical JSON
package model
