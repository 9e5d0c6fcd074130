package miner

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/incimine/internal/bitset"
	"github.com/roach88/incimine/internal/encoder"
	"github.com/roach88/incimine/internal/model"
)

// batchSize bounds how many candidate bitsets are alive at once while a
// level is being counted.
const batchSize = 1024

// minShardWords is the smallest word range worth handing to a worker.
const minShardWords = 16

// Miner mines frequent itemsets from an encoded matrix.
// A Miner holds no per-run state and may be reused.
type Miner struct {
	minSupport float64
	maxLen     int
	workers    int
	logger     *slog.Logger
}

// Option configures a Miner.
type Option func(*Miner)

// WithMaxLen caps itemset size. Zero means unbounded.
func WithMaxLen(k int) Option {
	return func(m *Miner) { m.maxLen = k }
}

// WithWorkers sets the number of goroutines used for support counting.
// Values below 2 count on the calling goroutine.
func WithWorkers(n int) Option {
	return func(m *Miner) { m.workers = n }
}

// WithLogger sets the logger used for per-level statistics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Miner) { m.logger = l }
}

// New creates a Miner. A min_support outside (0, 1] or a negative max length
// is a configuration error returned before any mining work.
func New(minSupport float64, opts ...Option) (*Miner, error) {
	if err := model.ValidateMinSupport(minSupport); err != nil {
		return nil, err
	}

	m := &Miner{
		minSupport: minSupport,
		workers:    1,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.maxLen < 0 {
		return nil, &model.ConfigError{Field: "max_len", Value: m.maxLen, Reason: "must be >= 0"}
	}
	if m.workers < 1 {
		m.workers = 1
	}
	return m, nil
}

// LevelStats records the work done at one level of the search.
type LevelStats struct {
	K          int `json:"k"`
	Candidates int `json:"candidates"` // generated by the join step
	Pruned     int `json:"pruned"`     // removed by the subset check before counting
	Frequent   int `json:"frequent"`
}

// Result holds every frequent itemset across all levels.
type Result struct {
	Itemsets     []model.Itemset `json:"itemsets"`
	Levels       []LevelStats    `json:"levels"`
	Transactions int             `json:"transactions"`
}

// node is a frequent itemset during mining: sorted column indices plus the
// transactions that contain all of them.
type node struct {
	cols  []int
	tids  *bitset.Set
	count int
}

// Mine runs the level-wise search over mat.
// An empty matrix yields an empty result, not an error.
func (m *Miner) Mine(mat *encoder.Matrix) (*Result, error) {
	if mat == nil {
		return nil, errors.New("miner: nil matrix")
	}
	total := mat.NumTransactions()
	res := &Result{
		Itemsets:     []model.Itemset{},
		Levels:       []LevelStats{},
		Transactions: total,
	}
	if total == 0 || mat.NumItems() == 0 {
		return res, nil
	}

	level := make([]node, 0, mat.NumItems())
	for j := 0; j < mat.NumItems(); j++ {
		tids := mat.TIDs(j)
		count := tids.Count()
		if m.frequent(count, total) {
			level = append(level, node{cols: []int{j}, tids: tids, count: count})
		}
	}
	m.record(res, LevelStats{K: 1, Candidates: mat.NumItems(), Frequent: len(level)})
	res.Itemsets = m.emit(res.Itemsets, mat, level, total)

	for k := 2; len(level) > 0 && k <= mat.NumItems(); k++ {
		if m.maxLen > 0 && k > m.maxLen {
			break
		}

		pairs, stats := generate(level, k)
		next := m.count(level, pairs, total)
		stats.Frequent = len(next)
		m.record(res, stats)

		res.Itemsets = m.emit(res.Itemsets, mat, next, total)
		level = next
	}

	return res, nil
}

func (m *Miner) frequent(count, total int) bool {
	return float64(count)/float64(total) >= m.minSupport
}

func (m *Miner) record(res *Result, stats LevelStats) {
	res.Levels = append(res.Levels, stats)
	m.logger.Debug("apriori level complete",
		"k", stats.K,
		"candidates", stats.Candidates,
		"pruned", stats.Pruned,
		"frequent", stats.Frequent,
	)
}

func (m *Miner) emit(out []model.Itemset, mat *encoder.Matrix, level []node, total int) []model.Itemset {
	for _, n := range level {
		items := make([]model.Item, len(n.cols))
		for i, j := range n.cols {
			items[i] = mat.Item(j)
		}
		out = append(out, model.Itemset{
			Items:   items,
			Count:   int64(n.count),
			Support: float64(n.count) / float64(total),
		})
	}
	return out
}

// pair is a surviving candidate: the join of level[a] and level[b].
type pair struct {
	a, b int
}

// generate joins members of level (all of size k-1, sorted) that share their
// first k-2 columns and prunes candidates with an infrequent subset.
func generate(level []node, k int) ([]pair, LevelStats) {
	stats := LevelStats{K: k}

	known := make(map[string]struct{}, len(level))
	for _, n := range level {
		known[colsKey(n.cols)] = struct{}{}
	}

	var pairs []pair
	subset := make([]int, 0, k-1)
	for a := 0; a < len(level); a++ {
		for b := a + 1; b < len(level); b++ {
			if !slices.Equal(level[a].cols[:k-2], level[b].cols[:k-2]) {
				// level is sorted, so no later b shares the prefix
				break
			}
			stats.Candidates++

			cand := append(slices.Clone(level[a].cols), level[b].cols[k-2])
			if !allSubsetsFrequent(cand, known, subset) {
				stats.Pruned++
				continue
			}
			pairs = append(pairs, pair{a: a, b: b})
		}
	}
	return pairs, stats
}

// allSubsetsFrequent checks every (k-1)-subset of cand against known.
// Dropping either of the last two columns yields one of the parents, so only
// the first k-2 drops need checking.
func allSubsetsFrequent(cand []int, known map[string]struct{}, scratch []int) bool {
	for drop := 0; drop < len(cand)-2; drop++ {
		scratch = scratch[:0]
		scratch = append(scratch, cand[:drop]...)
		scratch = append(scratch, cand[drop+1:]...)
		if _, ok := known[colsKey(scratch)]; !ok {
			return false
		}
	}
	return true
}

// count computes support for every candidate pair and returns the frequent
// ones, in candidate order. Candidates are processed in batches.
func (m *Miner) count(level []node, pairs []pair, total int) []node {
	var next []node
	for start := 0; start < len(pairs); start += batchSize {
		end := min(start+batchSize, len(pairs))
		batch := pairs[start:end]

		tids := make([]*bitset.Set, len(batch))
		for i := range batch {
			tids[i] = bitset.New(total)
		}
		counts := m.intersect(level, batch, tids)

		for i, p := range batch {
			if !m.frequent(counts[i], total) {
				continue
			}
			a := level[p.a]
			cols := append(slices.Clone(a.cols), level[p.b].cols[len(a.cols)-1])
			next = append(next, node{cols: cols, tids: tids[i], count: counts[i]})
		}
	}
	return next
}

// intersect fills tids[i] with the intersection of the parents of batch[i]
// and returns the popcounts. Work is sharded by word range when worthwhile.
func (m *Miner) intersect(level []node, batch []pair, tids []*bitset.Set) []int {
	counts := make([]int, len(batch))
	if len(batch) == 0 {
		return counts
	}
	words := tids[0].Words()

	shards := m.workers
	if maxShards := words / minShardWords; shards > maxShards {
		shards = maxShards
	}
	if shards <= 1 {
		for i, p := range batch {
			counts[i] = bitset.IntersectRange(tids[i], level[p.a].tids, level[p.b].tids, 0, words)
		}
		return counts
	}

	partial := make([][]int, shards)
	per := (words + shards - 1) / shards

	var wg sync.WaitGroup
	for s := 0; s < shards; s++ {
		lo := s * per
		hi := min(lo+per, words)
		partial[s] = make([]int, len(batch))
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(s, lo, hi int) {
			defer wg.Done()
			for i, p := range batch {
				partial[s][i] = bitset.IntersectRange(tids[i], level[p.a].tids, level[p.b].tids, lo, hi)
			}
		}(s, lo, hi)
	}
	wg.Wait()

	for s := range partial {
		for i, c := range partial[s] {
			counts[i] += c
		}
	}
	return counts
}

func colsKey(cols []int) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(c))
	}
	return b.String()
}
