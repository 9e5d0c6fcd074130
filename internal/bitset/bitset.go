// Package bitset is a fixed-width bitset used as a transaction-id set.
//
// Each mined itemset carries the set of transactions that contain it.
// Intersections and popcounts work on word ranges so that support counting
// can be split across shards that write disjoint words.
package bitset

import "math/bits"

const wordBits = 64

// Set is a bitset over [0, Len).
type Set struct {
	words []uint64
	n     int
}

// New returns an empty set able to hold n bits.
func New(n int) *Set {
	return &Set{words: make([]uint64, (n+wordBits-1)/wordBits), n: n}
}

// Len returns the bit capacity.
func (s *Set) Len() int {
	return s.n
}

// Words returns the number of 64-bit words backing the set.
func (s *Set) Words() int {
	return len(s.words)
}

// Add sets bit i.
func (s *Set) Add(i int) {
	s.words[i/wordBits] |= 1 << (uint(i) % wordBits)
}

// Has reports whether bit i is set.
func (s *Set) Has(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	return s.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Count returns the number of set bits.
func (s *Set) Count() int {
	return s.CountRange(0, len(s.words))
}

// CountRange returns the number of set bits in words [lo, hi).
func (s *Set) CountRange(lo, hi int) int {
	c := 0
	for _, w := range s.words[lo:hi] {
		c += bits.OnesCount64(w)
	}
	return c
}

// IntersectRange stores a AND b into dst for words [lo, hi) and returns the
// number of set bits written. All three sets must have the same length.
func IntersectRange(dst, a, b *Set, lo, hi int) int {
	c := 0
	for i := lo; i < hi; i++ {
		w := a.words[i] & b.words[i]
		dst.words[i] = w
		c += bits.OnesCount64(w)
	}
	return c
}

// Intersect returns a new set holding a AND b and its popcount.
func Intersect(a, b *Set) (*Set, int) {
	dst := New(a.n)
	return dst, IntersectRange(dst, a, b, 0, len(a.words))
}
