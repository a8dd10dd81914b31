// Package cooc finds groups of keys which frequently occur together, given
// the pairwise co-occurrence counts of a previous stats run.
package cooc

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/webdata/wdk"
)

// Option configures an Aggregator.
type Option func(a *Aggregator)

// OptExclude makes the Aggregator ignore every pair involving one of keys.
func OptExclude(keys ...string) Option {
	return func(a *Aggregator) {
		for _, k := range keys {
			a.exclude[k] = struct{}{}
		}
	}
}

// OptLogger sets the logger which reports malformed lines.
func OptLogger(l wdk.Logger) Option {
	return func(a *Aggregator) {
		a.log = l
	}
}

// Aggregator collects pair counts and mines them for frequent groups. Keys
// are interned through a wdk.Translator so the matrix is keyed by id.
type Aggregator struct {
	trans        wdk.Translator
	m            *wdk.CoocMatrix[uint64]
	transactions int64
	skipped      int64
	exclude      map[string]struct{}
	log          wdk.Logger
}

// NewAggregator returns an empty Aggregator interning keys with trans.
func NewAggregator(trans wdk.Translator, opts ...Option) *Aggregator {
	a := &Aggregator{
		trans:   trans,
		m:       wdk.NewCoocMatrix[uint64](),
		exclude: make(map[string]struct{}),
		log:     wdk.NopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add records that x and y occurred together support times. Every call
// counts toward the transactions, even if the pair itself is ignored
// because x equals y or either key is excluded. A pair added twice keeps
// the later support.
func (a *Aggregator) Add(x, y string, support int64) error {
	a.transactions += support
	if x == y {
		return nil
	}
	if _, ok := a.exclude[x]; ok {
		return nil
	}
	if _, ok := a.exclude[y]; ok {
		return nil
	}
	xid, err := a.trans.GetID(x)
	if err != nil {
		return errors.Wrapf(err, "getting id for %s", x)
	}
	yid, err := a.trans.GetID(y)
	if err != nil {
		return errors.Wrapf(err, "getting id for %s", y)
	}
	if yid < xid {
		xid, yid = yid, xid
	}
	a.m.Put(xid, yid, wdk.CountEntry(support))
	return nil
}

// Read adds every "a\tb\tsupport" line of r. Malformed lines are logged and
// skipped.
func (a *Aggregator) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 3 {
			a.log.Debugf("line %d: expected 3 fields, got %d", line, len(fields))
			a.skipped++
			continue
		}
		support, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		if err != nil {
			a.log.Debugf("line %d: %v", line, err)
			a.skipped++
			continue
		}
		if err := a.Add(fields[0], fields[1], support); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
	}
	return errors.Wrap(scanner.Err(), "scanning")
}

// Transactions returns the sum of the supports added.
func (a *Aggregator) Transactions() int64 { return a.transactions }

// Skipped returns the number of malformed lines Read skipped.
func (a *Aggregator) Skipped() int64 { return a.skipped }

// Pairs returns the number of distinct pairs recorded.
func (a *Aggregator) Pairs() int { return a.m.Len() }

// Group is a frequent set of keys.
type Group struct {
	Items    []string
	Support  int64
	Relative float64
}

func (g Group) String() string {
	rel := strconv.FormatFloat(g.Relative, 'f', 6, 64)
	rel = strings.TrimRight(strings.TrimRight(rel, "0"), ".")
	if rel == "" {
		rel = "0"
	}
	return fmt.Sprintf("%d\t%s\t%s", g.Support, rel, strings.Join(g.Items, "\t"))
}

// Groups returns the maximal groups of at least minSize keys whose support
// relative to the transactions exceeds threshold, by descending support.
// The items of a group are sorted.
func (a *Aggregator) Groups(threshold float64, minSize int) ([]Group, error) {
	sets := wdk.FrequentItemsets(a.m.SparseMatrix, a.transactions, threshold, minSize)
	groups := make([]Group, 0, len(sets))
	for _, s := range sets {
		g := Group{
			Items:    make([]string, len(s.Items)),
			Support:  s.Support(),
			Relative: float64(s.Support()) / float64(a.transactions),
		}
		for i, id := range s.Items {
			val, err := a.trans.Get(id)
			if err != nil {
				return nil, errors.Wrap(err, "translating group")
			}
			g.Items[i] = val
		}
		sort.Strings(g.Items)
		groups = append(groups, g)
	}
	return groups, nil
}

// WriteGroups writes the result of Groups to w, one group per line.
func (a *Aggregator) WriteGroups(w io.Writer, threshold float64, minSize int) (int, error) {
	groups, err := a.Groups(threshold, minSize)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(w)
	for _, g := range groups {
		if _, err := fmt.Fprintln(bw, g.String()); err != nil {
			return 0, errors.Wrap(err, "writing group")
		}
	}
	return len(groups), errors.Wrap(bw.Flush(), "flushing groups")
}
