// Package encoder turns transactions into a transaction × item membership
// index.
//
// The universe of items is every distinct non-empty label observed in the
// input, in byte-wise ascending order, so two runs over the same input
// produce the same column numbering. The matrix is stored sparsely: each row
// keeps its sorted column indices and each column keeps a transaction-id
// bitset, which is what the miner intersects during support counting.
package encoder

import (
	"slices"

	"github.com/roach88/incimine/internal/bitset"
	"github.com/roach88/incimine/internal/model"
)

// Matrix is the encoded form of a transaction list.
type Matrix struct {
	universe []model.Item
	index    map[model.Item]int
	rows     [][]int
	tids     []*bitset.Set
}

// Encode builds the membership index for txs.
// Empty labels are dropped and repeated labels in one transaction count once.
// Zero transactions yield an empty matrix.
func Encode(txs []model.Transaction) *Matrix {
	seen := make(map[model.Item]struct{})
	for _, tx := range txs {
		for _, it := range tx {
			if it == "" {
				continue
			}
			seen[it] = struct{}{}
		}
	}

	universe := make([]model.Item, 0, len(seen))
	for it := range seen {
		universe = append(universe, it)
	}
	slices.Sort(universe)

	index := make(map[model.Item]int, len(universe))
	for i, it := range universe {
		index[it] = i
	}

	m := &Matrix{
		universe: universe,
		index:    index,
		rows:     make([][]int, len(txs)),
		tids:     make([]*bitset.Set, len(universe)),
	}
	for j := range m.tids {
		m.tids[j] = bitset.New(len(txs))
	}

	for i, tx := range txs {
		row := make([]int, 0, len(tx))
		for _, it := range tx {
			if it == "" {
				continue
			}
			j := index[it]
			if m.tids[j].Has(i) {
				continue
			}
			m.tids[j].Add(i)
			row = append(row, j)
		}
		slices.Sort(row)
		m.rows[i] = row
	}

	return m
}

// NumTransactions returns the number of rows.
func (m *Matrix) NumTransactions() int {
	return len(m.rows)
}

// NumItems returns the size of the universe.
func (m *Matrix) NumItems() int {
	return len(m.universe)
}

// Universe returns the column labels in order. Callers must not modify it.
func (m *Matrix) Universe() []model.Item {
	return m.universe
}

// Item returns the label of column j.
func (m *Matrix) Item(j int) model.Item {
	return m.universe[j]
}

// Column returns the column index of it, or false if it was never observed.
func (m *Matrix) Column(it model.Item) (int, bool) {
	j, ok := m.index[it]
	return j, ok
}

// Row returns the sorted column indices of transaction i.
func (m *Matrix) Row(i int) []int {
	return m.rows[i]
}

// Contains reports whether transaction i contains column j in O(1).
func (m *Matrix) Contains(i, j int) bool {
	if j < 0 || j >= len(m.tids) {
		return false
	}
	return m.tids[j].Has(i)
}

// TIDs returns the transaction-id set of column j. Callers must not modify it.
func (m *Matrix) TIDs(j int) *bitset.Set {
	return m.tids[j]
}

// Dense materializes the boolean matrix: out[i][j] is true iff transaction i
// contains item j.
func (m *Matrix) Dense() [][]bool {
	out := make([][]bool, len(m.rows))
	for i, row := range m.rows {
		out[i] = make([]bool, len(m.universe))
		for _, j := range row {
			out[i][j] = true
		}
	}
	return out
}
