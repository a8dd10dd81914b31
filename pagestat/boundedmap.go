package pagestat

import (
	"math"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// BoundedMap is a map which remembers the order its keys were last used in.
// It never evicts on its own: once Over reports true the caller drains it
// with EvictOldest, folding the evicted values into its own totals.
type BoundedMap[K comparable, V any] struct {
	capacity int
	lru      *simplelru.LRU[K, V]
}

// NewBoundedMap returns an empty map holding up to capacity keys.
func NewBoundedMap[K comparable, V any](capacity int) *BoundedMap[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	// the lru only orders keys, the capacity is enforced by the caller
	l, err := simplelru.NewLRU[K, V](math.MaxInt32, nil)
	if err != nil {
		panic(err)
	}
	return &BoundedMap[K, V]{capacity: capacity, lru: l}
}

// Put sets key to v and marks key as the most recently used.
func (b *BoundedMap[K, V]) Put(key K, v V) {
	b.lru.Add(key, v)
}

// Get returns the value of key and marks key as the most recently used.
func (b *BoundedMap[K, V]) Get(key K) (V, bool) {
	return b.lru.Get(key)
}

// Len returns the number of keys held.
func (b *BoundedMap[K, V]) Len() int { return b.lru.Len() }

// Capacity returns the number of keys b holds before Over reports true.
func (b *BoundedMap[K, V]) Capacity() int { return b.capacity }

// Over reports whether b holds more keys than its capacity.
func (b *BoundedMap[K, V]) Over() bool {
	return b.lru.Len() > b.capacity
}

// EvictOldest removes and returns the least recently used key. ok is false
// if b is empty.
func (b *BoundedMap[K, V]) EvictOldest() (key K, v V, ok bool) {
	return b.lru.RemoveOldest()
}
