package wdk

import (
	"cmp"
	"slices"
)

// SparseMatrix is a two level map from row to column to entry. A missing row
// or column is simply not present. SparseMatrix is not safe for concurrent
// use.
type SparseMatrix[K cmp.Ordered, E any] struct {
	rows map[K]map[K]E
	n    int
}

// NewSparseMatrix returns an empty matrix.
func NewSparseMatrix[K cmp.Ordered, E any]() *SparseMatrix[K, E] {
	return &SparseMatrix[K, E]{
		rows: make(map[K]map[K]E),
	}
}

// Put sets the entry at (row, col).
func (m *SparseMatrix[K, E]) Put(row, col K, e E) {
	r, ok := m.rows[row]
	if !ok {
		r = make(map[K]E)
		m.rows[row] = r
	}
	if _, ok := r[col]; !ok {
		m.n++
	}
	r[col] = e
}

// Get returns the entry at (row, col).
func (m *SparseMatrix[K, E]) Get(row, col K) (E, bool) {
	e, ok := m.rows[row][col]
	return e, ok
}

// Has reports whether there is an entry at (row, col).
func (m *SparseMatrix[K, E]) Has(row, col K) bool {
	_, ok := m.rows[row][col]
	return ok
}

// HasRow reports whether row has any entries.
func (m *SparseMatrix[K, E]) HasRow(row K) bool {
	_, ok := m.rows[row]
	return ok
}

// Row returns the entries of row keyed by column. The map belongs to the
// matrix and must not be modified.
func (m *SparseMatrix[K, E]) Row(row K) map[K]E {
	return m.rows[row]
}

// Rows returns the row keys in order.
func (m *SparseMatrix[K, E]) Rows() []K {
	ret := make([]K, 0, len(m.rows))
	for k := range m.rows {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

// Cols returns the column keys of row in order.
func (m *SparseMatrix[K, E]) Cols(row K) []K {
	r := m.rows[row]
	ret := make([]K, 0, len(r))
	for k := range r {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}

// Len returns the number of entries.
func (m *SparseMatrix[K, E]) Len() int { return m.n }

// Each calls fn for every entry, in row then column order.
func (m *SparseMatrix[K, E]) Each(fn func(row, col K, e E)) {
	for _, row := range m.Rows() {
		for _, col := range m.Cols(row) {
			fn(row, col, m.rows[row][col])
		}
	}
}

// pair looks (a, b) up in either orientation.
func (m *SparseMatrix[K, E]) pair(a, b K) (E, bool) {
	if e, ok := m.Get(a, b); ok {
		return e, true
	}
	return m.Get(b, a)
}

// CoocMatrix counts co-occurrences of key pairs. The smaller key of a pair
// is always the row.
type CoocMatrix[K cmp.Ordered] struct {
	*SparseMatrix[K, CountEntry]
}

// NewCoocMatrix returns an empty co-occurrence matrix.
func NewCoocMatrix[K cmp.Ordered]() *CoocMatrix[K] {
	return &CoocMatrix[K]{SparseMatrix: NewSparseMatrix[K, CountEntry]()}
}

// Increment adds n to the entry at (row, col) as given.
func (m *CoocMatrix[K]) Increment(row, col K, n int64) {
	e, _ := m.Get(row, col)
	m.Put(row, col, e+CountEntry(n))
}

// Record counts one co-occurrence of a and b.
func (m *CoocMatrix[K]) Record(a, b K) {
	m.RecordN(a, b, 1)
}

// RecordN counts n co-occurrences of a and b.
func (m *CoocMatrix[K]) RecordN(a, b K, n int64) {
	if b < a {
		a, b = b, a
	}
	m.Increment(a, b, n)
}

// DomainCoocMatrix counts co-occurrences of property pairs together with
// the domains they were seen on.
type DomainCoocMatrix struct {
	*SparseMatrix[string, *DomainCountEntry]
	domainLimit int
}

// NewDomainCoocMatrix returns an empty matrix whose cells keep about
// domainLimit domains each.
func NewDomainCoocMatrix(domainLimit int) *DomainCoocMatrix {
	return &DomainCoocMatrix{
		SparseMatrix: NewSparseMatrix[string, *DomainCountEntry](),
		domainLimit:  domainLimit,
	}
}

// Record counts one co-occurrence of properties a and b on domain. Pairs
// involving rdf:type are not recorded.
func (m *DomainCoocMatrix) Record(a, b, domain string) {
	if a == RDFType || b == RDFType {
		return
	}
	if b < a {
		a, b = b, a
	}
	e, ok := m.Get(a, b)
	if !ok {
		e = NewDomainCountEntry(m.domainLimit)
		m.Put(a, b, e)
	}
	e.Record(domain)
}

// Merge adds every cell of other into m.
func (m *DomainCoocMatrix) Merge(other *DomainCoocMatrix) {
	other.Each(func(row, col string, o *DomainCountEntry) {
		e, ok := m.Get(row, col)
		if !ok {
			e = NewDomainCountEntry(m.domainLimit)
			m.Put(row, col, e)
		}
		e.Merge(o)
	})
}
