// Package miner implements level-wise (Apriori) frequent itemset mining.
//
// # Algorithm
//
// Level 1 counts every single item. Level k joins pairs of frequent
// (k-1)-itemsets that share their first k-2 items, discards any candidate
// with an infrequent (k-1)-subset (anti-monotonicity), and counts the
// survivors by intersecting the transaction-id bitsets of the two parents.
// Mining stops when a level comes back empty, when k exceeds the universe
// size, or when k exceeds the configured maximum length.
//
// # Ordering Barrier
//
// Level k+1 candidates are generated only after the whole of level k is
// final. The subset-pruning check needs complete knowledge of level k.
//
// # Parallel Counting
//
// With more than one worker, support counting for a level is split across
// transaction shards: each worker intersects a disjoint word range of every
// candidate's bitset and reports a partial count. Partial counts are summed
// before the min_support comparison.
//
// # Numeric Semantics
//
// Support is count / total as a float64. Ties at exactly min_support are
// kept. Itemset emission order carries no meaning for callers.
package miner
