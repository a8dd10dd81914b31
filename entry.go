package wdk

// Entry is a matrix cell which the itemset miner can combine. Support is the
// number of transactions the entry stands for. Intersect returns the entry
// for the conjunction of the receiver and others, and false if that
// conjunction is empty. Intersect must be commutative and associative, and
// must not modify its inputs.
//
// The implementations are CountEntry and *DomainCountEntry.
type Entry[E any] interface {
	Support() int64
	Intersect(others ...E) (E, bool)
}

var (
	_ Entry[CountEntry]        = CountEntry(0)
	_ Entry[*DomainCountEntry] = &DomainCountEntry{}
)

// CountEntry is a plain co-occurrence count.
type CountEntry int64

// Support implements Entry.
func (c CountEntry) Support() int64 { return int64(c) }

// Intersect returns the smallest count.
func (c CountEntry) Intersect(others ...CountEntry) (CountEntry, bool) {
	least := c
	for _, o := range others {
		if o < least {
			least = o
		}
	}
	return least, least > 0
}

// DomainCountEntry counts entities and the domains they came from.
type DomainCountEntry struct {
	Entities int64 `json:"entities"`
	Domains  *TopK `json:"domains"`
}

// NewDomainCountEntry returns an empty entry keeping about domainLimit
// domains.
func NewDomainCountEntry(domainLimit int) *DomainCountEntry {
	return &DomainCountEntry{Domains: NewTopK(domainLimit)}
}

// Record counts one entity seen on domain.
func (d *DomainCountEntry) Record(domain string) {
	d.Entities++
	d.Domains.Increment(domain)
}

// Support implements Entry.
func (d *DomainCountEntry) Support() int64 {
	if d == nil {
		return 0
	}
	return d.Entities
}

// Intersect returns the smallest entity count, and the domains present in
// every entry with the smallest count for each.
func (d *DomainCountEntry) Intersect(others ...*DomainCountEntry) (*DomainCountEntry, bool) {
	if d == nil {
		return nil, false
	}
	entities := d.Entities
	domains := d.Domains.Map()
	for _, o := range others {
		if o == nil {
			return nil, false
		}
		if o.Entities < entities {
			entities = o.Entities
		}
		for k, v := range domains {
			ov, ok := o.Domains.Get(k)
			if !ok {
				delete(domains, k)
				continue
			}
			if ov < v {
				domains[k] = ov
			}
		}
	}
	ret := &DomainCountEntry{
		Entities: entities,
		Domains:  &TopK{limit: d.Domains.Limit(), counts: domains},
	}
	return ret, entities > 0
}

// Merge adds the counts of other into d.
func (d *DomainCountEntry) Merge(other *DomainCountEntry) {
	d.Entities += other.Entities
	d.Domains.Merge(other.Domains)
}
