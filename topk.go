package wdk

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// KeyCount is a single TopK entry.
type KeyCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type byCountDescending []KeyCount

func (kc byCountDescending) Len() int { return len(kc) }
func (kc byCountDescending) Less(i, j int) bool {
	return kc[i].Count > kc[j].Count || (kc[i].Count == kc[j].Count && kc[i].Key < kc[j].Key)
}
func (kc byCountDescending) Swap(i, j int) { kc[i], kc[j] = kc[j], kc[i] }

// TopK is a bounded frequency table. Before each Add, while the table holds
// more than limit keys, the key with the smallest count is evicted. The
// table therefore never holds more than limit+1 keys. This is a greedy
// approximation: a key evicted early loses its count if it comes back.
//
// Eviction scans every key, which is fine for the small limits it is used
// with. TopK is not safe for concurrent use.
type TopK struct {
	limit  int
	counts map[string]int64
}

// NewTopK returns a TopK holding about limit keys. A negative limit is
// treated as 0.
func NewTopK(limit int) *TopK {
	if limit < 0 {
		limit = 0
	}
	return &TopK{
		limit:  limit,
		counts: make(map[string]int64),
	}
}

// Increment adds one to key.
func (t *TopK) Increment(key string) {
	t.Add(key, 1)
}

// Add adds value to the count for key.
func (t *TopK) Add(key string, value int64) {
	for len(t.counts) > t.limit {
		if !t.evictMin() {
			break
		}
	}
	t.counts[key] += value
}

func (t *TopK) evictMin() bool {
	var minKey string
	var minVal int64
	first := true
	for k, v := range t.counts {
		if first || v < minVal {
			minKey, minVal, first = k, v, false
		}
	}
	if first {
		return false
	}
	delete(t.counts, minKey)
	return true
}

// Get returns the count for key.
func (t *TopK) Get(key string) (int64, bool) {
	v, ok := t.counts[key]
	return v, ok
}

// Len returns the number of keys held.
func (t *TopK) Len() int { return len(t.counts) }

// Limit returns the limit the TopK was created with.
func (t *TopK) Limit() int { return t.limit }

// Map returns a copy of the current counts.
func (t *TopK) Map() map[string]int64 {
	m := make(map[string]int64, len(t.counts))
	for k, v := range t.counts {
		m[k] = v
	}
	return m
}

// Sorted returns every entry by descending count. Entries with equal counts
// are ordered by key.
func (t *TopK) Sorted() []KeyCount {
	ret := make([]KeyCount, 0, len(t.counts))
	for k, v := range t.counts {
		ret = append(ret, KeyCount{Key: k, Count: v})
	}
	sort.Sort(byCountDescending(ret))
	return ret
}

// Merge adds every entry of other into t.
func (t *TopK) Merge(other *TopK) {
	for _, kc := range other.Sorted() {
		t.Add(kc.Key, kc.Count)
	}
}

// MarshalJSON writes the sorted entries as an array.
func (t *TopK) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Sorted())
}

// String returns every entry, one per line.
func (t *TopK) String() string {
	sb := strings.Builder{}
	for _, kc := range t.Sorted() {
		fmt.Fprintf(&sb, "%d\t%s\n", kc.Count, kc.Key)
	}
	return sb.String()
}
