package tablegen

import "github.com/webdata/wdk"

// EntityStats counts how many properties entities of one class carry, and
// how often each property is used. The namespace filter only applies to
// the per-property counts. It is triggered by rdf:type statements
// naming its class, schema:Product unless OptClass says otherwise.
type EntityStats struct {
	class  string
	filter wdk.NamespaceFilter
	log    wdk.Logger

	entities int64
	sizes    wdk.Distribution
	counts   map[string]int64
}

// NewEntityStats gets a new EntityStats.
func NewEntityStats(opts ...Option) *EntityStats {
	s := newSettings(opts)
	return &EntityStats{
		class:  s.class,
		filter: s.conf.Filter(),
		log:    s.log,
		counts: make(map[string]int64),
	}
}

// Handle implements wdk.Handler.
func (s *EntityStats) Handle(r wdk.Resolver, st wdk.Statement) {
	if !st.IsType() || st.Object.Value != s.class {
		return
	}
	e := r.ResolveEntity(st.SubjectKey(), 0)
	if e.Empty() {
		return
	}
	for p := range e.Properties {
		if s.filter.Allow(p) {
			s.counts[p]++
		}
	}
	s.entities++
	s.sizes.Add(float64(len(e.Properties)))
	s.log.Debugf("%v", e)
}

// Merge adds the counts of other into s.
func (s *EntityStats) Merge(other *EntityStats) {
	s.entities += other.entities
	s.sizes.Merge(&other.sizes)
	for k, v := range other.counts {
		s.counts[k] += v
	}
}

// EntityReport is the summary of an EntityStats.
type EntityReport struct {
	Class      string          `json:"class"`
	Entities   int64           `json:"entities"`
	Properties wdk.Description `json:"properties"`
	Counts     []wdk.KeyCount  `json:"counts"`
}

// Report summarizes the entities seen so far. Counts is ordered by
// descending count.
func (s *EntityStats) Report() EntityReport {
	top := wdk.NewTopK(len(s.counts))
	for k, v := range s.counts {
		top.Add(k, v)
	}
	return EntityReport{
		Class:      s.class,
		Entities:   s.entities,
		Properties: s.sizes.Describe(),
		Counts:     top.Sorted(),
	}
}
