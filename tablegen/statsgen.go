package tablegen

import (
	"strings"

	"github.com/webdata/wdk"
)

// StatsGenerator collects corpus statistics over every typed entity: the
// most frequent classes and properties, how many property values are links
// and how many of those point to another domain.
//
// Domains are counted by comparing each entity's domain to the previous
// entity's only, so DomainsRead is exact only as long as the entities of a
// domain arrive together, which is how crawl output is laid out.
type StatsGenerator struct {
	filter wdk.NamespaceFilter
	log    wdk.Logger

	classes    *wdk.TopK
	properties *wdk.TopK
	cooc       *wdk.DomainCoocMatrix

	entities        int64
	domainsRead     int64
	currentDomain   string
	totalProperties int64
	links           int64
	remoteLinks     int64
	literals        int64
}

// NewStatsGenerator gets a new StatsGenerator. Property co-occurrences are
// only recorded with OptCooc.
func NewStatsGenerator(opts ...Option) *StatsGenerator {
	s := newSettings(opts)
	g := &StatsGenerator{
		filter:     s.conf.Filter(),
		log:        s.log,
		classes:    wdk.NewTopK(s.topK),
		properties: wdk.NewTopK(s.topK),
	}
	if s.domainLimit > 0 {
		g.cooc = wdk.NewDomainCoocMatrix(s.domainLimit)
	}
	return g
}

// Handle implements wdk.Handler.
func (g *StatsGenerator) Handle(r wdk.Resolver, st wdk.Statement) {
	if !st.IsType() {
		return
	}
	e := r.ResolveEntity(st.SubjectKey(), 0)
	if e.Empty() {
		return
	}
	g.entities++
	if typ, err := e.Type(); err == nil {
		g.classes.Increment(typ)
	}
	domain := wdk.Domain(e.Context)

	preds := e.Predicates()
	kept := preds[:0]
	for _, p := range preds {
		if g.filter.Allow(p) {
			kept = append(kept, p)
		}
	}
	for i, p := range kept {
		if g.cooc != nil {
			for _, q := range kept[:i] {
				g.cooc.Record(p, q, domain)
			}
		}
		g.totalProperties++
		if p == wdk.RDFType {
			continue
		}
		g.properties.Increment(p)
		v := e.Properties[p]
		if strings.HasPrefix(v, "http") {
			g.links++
			if wdk.Domain(v) != domain {
				g.remoteLinks++
			}
		} else {
			g.literals++
		}
	}

	if domain != g.currentDomain {
		g.currentDomain = domain
		g.domainsRead++
	}
}

// Cooc returns the property co-occurrence matrix, or nil if the generator
// was created without OptCooc.
func (g *StatsGenerator) Cooc() *wdk.DomainCoocMatrix { return g.cooc }

// Entities returns the number of entities counted.
func (g *StatsGenerator) Entities() int64 { return g.entities }

// Itemsets mines groups of properties which are used together, with the
// entities counted so far as transactions. It returns nil without
// OptCooc.
func (g *StatsGenerator) Itemsets(threshold float64, minSize int) []wdk.Itemset[string, *wdk.DomainCountEntry] {
	if g.cooc == nil {
		return nil
	}
	return wdk.FrequentItemsets(g.cooc.SparseMatrix, g.entities, threshold, minSize)
}

// Merge adds the statistics of other into g. The domain count of the
// result is the sum of both, so a domain spread over both counts twice.
func (g *StatsGenerator) Merge(other *StatsGenerator) {
	g.entities += other.entities
	g.domainsRead += other.domainsRead
	g.totalProperties += other.totalProperties
	g.links += other.links
	g.remoteLinks += other.remoteLinks
	g.literals += other.literals
	g.classes.Merge(other.classes)
	g.properties.Merge(other.properties)
	if g.cooc != nil && other.cooc != nil {
		g.cooc.Merge(other.cooc)
	}
}

// StatsReport is the summary of a StatsGenerator.
type StatsReport struct {
	Entities          int64     `json:"entities"`
	DomainsRead       int64     `json:"domainsRead"`
	TotalProperties   int64     `json:"totalProperties"`
	ObjectLinks       int64     `json:"objectLinks"`
	ObjectRemoteLinks int64     `json:"objectRemoteLinks"`
	ObjectLiterals    int64     `json:"objectLiterals"`
	TopClasses        *wdk.TopK `json:"topClasses"`
	TopProperties     *wdk.TopK `json:"topProperties"`
}

// Report summarizes the statistics collected so far. The TopKs are shared
// with g.
func (g *StatsGenerator) Report() StatsReport {
	return StatsReport{
		Entities:          g.entities,
		DomainsRead:       g.domainsRead,
		TotalProperties:   g.totalProperties,
		ObjectLinks:       g.links,
		ObjectRemoteLinks: g.remoteLinks,
		ObjectLiterals:    g.literals,
		TopClasses:        g.classes,
		TopProperties:     g.properties,
	}
}
