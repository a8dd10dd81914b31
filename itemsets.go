package wdk

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Itemset is a set of keys which co-occur, with the entry combining all of
// their pairwise cells.
type Itemset[K cmp.Ordered, E Entry[E]] struct {
	Items []K
	Entry E
}

// Support returns the support of the itemset's entry.
func (s Itemset[K, E]) Support() int64 {
	return s.Entry.Support()
}

// Key returns the sorted items separated by spaces.
func (s Itemset[K, E]) Key() string {
	parts := make([]string, len(s.Items))
	for i, it := range s.Items {
		parts[i] = fmt.Sprint(it)
	}
	return strings.Join(parts, " ")
}

func (s Itemset[K, E]) String() string {
	return fmt.Sprintf("%d\t%s", s.Support(), s.Key())
}

func itemsKey[K cmp.Ordered](items []K) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprint(it)
	}
	return strings.Join(parts, "\x00")
}

// FrequentItemsets finds maximal sets of keys whose combined support
// clears threshold, measured as a fraction of transactions.
//
// Every cell of m with support/transactions >= threshold seeds a pair. Each
// round then grows every set found in the previous round by the partners b
// in the rows of its members, combining the set's entry with the cells
// between b and every member. A cell may be stored in either orientation. A
// grown set is kept if its support/transactions > threshold, and any of its
// subsets with the same support is dropped. Growth stops at a missing cell
// or at zero support. Rounds repeat until one adds nothing.
//
// Sets smaller than minSize are left out of the result, as is any set
// contained in a larger result with the same support. The result is ordered
// by support, then size, both descending.
func FrequentItemsets[K cmp.Ordered, E Entry[E]](m *SparseMatrix[K, E], transactions int64, threshold float64, minSize int) []Itemset[K, E] {
	if transactions <= 0 {
		return nil
	}
	ratio := func(e E) float64 {
		return float64(e.Support()) / float64(transactions)
	}

	found := make(map[string]*Itemset[K, E])
	var current []*Itemset[K, E]
	m.Each(func(row, col K, e E) {
		if row == col || e.Support() <= 0 || ratio(e) < threshold {
			return
		}
		items := []K{row, col}
		slices.Sort(items)
		key := itemsKey(items)
		if _, ok := found[key]; ok {
			return
		}
		s := &Itemset[K, E]{Items: items, Entry: e}
		found[key] = s
		current = append(current, s)
	})

	for len(current) > 0 {
		var next []*Itemset[K, E]
		remove := make(map[string]struct{})
		for _, s := range current {
			for _, a := range s.Items {
				for _, b := range m.Cols(a) {
					if slices.Contains(s.Items, b) {
						continue
					}
					items := append(slices.Clone(s.Items), b)
					slices.Sort(items)
					key := itemsKey(items)
					if _, ok := found[key]; ok {
						continue
					}
					e, ok := grow(m, s, b)
					if !ok || ratio(e) <= threshold {
						continue
					}
					ns := &Itemset[K, E]{Items: items, Entry: e}
					found[key] = ns
					next = append(next, ns)
					for i := range items {
						sub := itemsKey(slices.Delete(slices.Clone(items), i, i+1))
						if ss, ok := found[sub]; ok && ss.Support() == e.Support() {
							remove[sub] = struct{}{}
						}
					}
				}
			}
		}
		for k := range remove {
			delete(found, k)
		}
		current = next
	}

	ret := make([]Itemset[K, E], 0, len(found))
	for _, s := range found {
		if len(s.Items) >= minSize {
			ret = append(ret, *s)
		}
	}
	ret = maximal(ret)
	sort.Slice(ret, func(i, j int) bool {
		si, sj := ret[i].Support(), ret[j].Support()
		if si != sj {
			return si > sj
		}
		if len(ret[i].Items) != len(ret[j].Items) {
			return len(ret[i].Items) > len(ret[j].Items)
		}
		return ret[i].Key() < ret[j].Key()
	})
	return ret
}

// grow combines s's entry with the cells between b and each member of s.
func grow[K cmp.Ordered, E Entry[E]](m *SparseMatrix[K, E], s *Itemset[K, E], b K) (E, bool) {
	var zero E
	cells := make([]E, 0, len(s.Items))
	for _, it := range s.Items {
		e, ok := m.pair(it, b)
		if !ok || e.Support() <= 0 {
			return zero, false
		}
		cells = append(cells, e)
	}
	return s.Entry.Intersect(cells...)
}

// maximal drops every set contained in another set with the same support.
func maximal[K cmp.Ordered, E Entry[E]](sets []Itemset[K, E]) []Itemset[K, E] {
	ret := make([]Itemset[K, E], 0, len(sets))
	for i, s := range sets {
		contained := false
		for j, o := range sets {
			if i == j || len(o.Items) <= len(s.Items) || o.Support() != s.Support() {
				continue
			}
			if isSubset(s.Items, o.Items) {
				contained = true
				break
			}
		}
		if !contained {
			ret = append(ret, s)
		}
	}
	return ret
}

func isSubset[K cmp.Ordered](small, big []K) bool {
	for _, k := range small {
		if _, ok := slices.BinarySearch(big, k); !ok {
			return false
		}
	}
	return true
}
