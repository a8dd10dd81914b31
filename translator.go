package wdk

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownID is returned by Translator.Get for ids which were never
// allocated.
var ErrUnknownID = errors.New("unknown id")

// Translator interns vocabulary strings (property and class IRIs, domains)
// as dense integer ids so that matrices can be keyed by uint64.
// Implementations should be threadsafe and generate ids monotonically.
type Translator interface {
	Get(id uint64) (string, error)
	GetID(val string) (uint64, error)
}

// MapTranslator is an in-memory implementation of Translator using sync.Map
// and a slice. Ids start at 0.
type MapTranslator struct {
	m sync.Map

	n *Nexter

	l sync.RWMutex
	s []string
}

// NewMapTranslator creates a new MapTranslator.
func NewMapTranslator() *MapTranslator {
	return &MapTranslator{
		n: NewNexter(),
		s: make([]string, 0),
	}
}

// Get returns the value mapped to the given id.
func (m *MapTranslator) Get(id uint64) (string, error) {
	m.l.RLock()
	defer m.l.RUnlock()
	if uint64(len(m.s)) <= id {
		return "", errors.Wrapf(ErrUnknownID, "%d", id)
	}
	return m.s[id], nil
}

// GetID returns the integer id associated with the given value. It allocates a
// new ID if the value is not found.
func (m *MapTranslator) GetID(val string) (id uint64, err error) {
	if idv, ok := m.m.Load(val); ok {
		return idv.(uint64), nil
	}
	m.l.Lock()
	defer m.l.Unlock()
	if idv, ok := m.m.Load(val); ok {
		return idv.(uint64), nil
	}
	nextid := m.n.Next()
	m.s = append(m.s, val)
	if uint64(len(m.s)) != nextid+1 {
		panic(fmt.Sprintf("unexpected length of slice, nextid: %d, len: %d", nextid, len(m.s)))
	}
	m.m.Store(val, nextid)
	return nextid, nil
}

// Len returns the number of values mapped.
func (m *MapTranslator) Len() int {
	m.l.RLock()
	defer m.l.RUnlock()
	return len(m.s)
}
