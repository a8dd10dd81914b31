// Package pagestat aggregates the per-page and per-segment statistics files
// written by an extraction run into a report.
package pagestat

import (
	"bufio"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/webdata/wdk"
)

const (
	// DomainCapacity is the default number of domains aggregated at once.
	DomainCapacity = 1000

	topDomains          = 10000
	topDomainsPerFormat = 1000
)

// Option configures ReadPageStats and ReadDataStats.
type Option func(*settings)

type settings struct {
	log   wdk.Logger
	stats wdk.Statter
}

// OptLogger sets the logger which reports malformed lines.
func OptLogger(l wdk.Logger) Option {
	return func(s *settings) {
		s.log = l
	}
}

// OptStatter sets the stats collector.
func OptStatter(st wdk.Statter) Option {
	return func(s *settings) {
		s.stats = st
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{log: wdk.NopLogger{}, stats: wdk.NopStatter{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type average struct {
	n   int64
	sum float64
}

func (a *average) add(v int64) {
	a.n++
	a.sum += float64(v)
}

func (a *average) value() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sum / float64(a.n)
}

// FormatReport holds the statistics of one extractor output format.
type FormatReport struct {
	Format              string    `json:"extractor"`
	Triples             int64     `json:"triples"`
	URLs                int64     `json:"urls"`
	Domains             int64     `json:"domains"`
	AvgTriplesPerURL    float64   `json:"avgTriplesPerUrl"`
	AvgTriplesPerDomain float64   `json:"avgTriplesPerDomain"`
	TopDomains          *wdk.TopK `json:"topDomains"`
	TopDomainsURLs      *wdk.TopK `json:"topDomainsUrls"`

	perURL    average
	perDomain average
}

// PageReport is the aggregate of a page statistics file.
type PageReport struct {
	Formats        []*FormatReport `json:"extractors"`
	Lines          int64           `json:"lines"`
	Errors         int64           `json:"errors"`
	TotalTriples   int64           `json:"totalTriples"`
	TotalSize      wdk.Bytes       `json:"totalSize"`
	MinTimestamp   int64           `json:"minTimestamp"`
	MaxTimestamp   int64           `json:"maxTimestamp"`
	TopDomains     *wdk.TopK       `json:"topDomains"`
	TopDomainsURLs *wdk.TopK       `json:"topDomainsUrls"`
}

// Format returns the report of the named format, or nil.
func (p *PageReport) Format(name string) *FormatReport {
	for _, f := range p.Formats {
		if f.Format == name {
			return f
		}
	}
	return nil
}

func (p *PageReport) foldDomain(domain string, triples map[string]int64) {
	for _, f := range p.Formats {
		v := triples[f.Format]
		if v < 1 {
			continue
		}
		f.Domains++
		f.perDomain.add(v)
		f.TopDomains.Add(domain, v)
		p.TopDomains.Add(domain, v)
	}
}

func header(line string, required []string) (map[string]int, error) {
	cols := map[string]int{}
	for i, name := range strings.Split(line, "\t") {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, errors.Errorf("missing column %s", name)
		}
	}
	return cols, nil
}

// ReadPageStats aggregates the tab separated page statistics in r. The first
// line names the columns: uri, timestamp, recordLength, totalTriples,
// html-head-meta and one triple count per format in conf.Formats. Pages
// with no triples beyond their html head meta are skipped. Triples are
// summed per pay-level domain, holding at most capacity domains at once;
// the least recently seen domain is folded into the report when that is
// exceeded.
func ReadPageStats(r io.Reader, conf wdk.Config, capacity int, opts ...Option) (*PageReport, error) {
	s := newSettings(opts)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "reading header")
		}
		return nil, errors.New("no header found")
	}
	required := append([]string{"uri", "timestamp", "recordLength", "totalTriples", "html-head-meta"}, conf.Formats...)
	cols, err := header(scanner.Text(), required)
	if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}

	report := &PageReport{
		MinTimestamp:   math.MaxInt64,
		TopDomains:     wdk.NewTopK(topDomains),
		TopDomainsURLs: wdk.NewTopK(topDomains),
	}
	for _, name := range conf.Formats {
		report.Formats = append(report.Formats, &FormatReport{
			Format:         name,
			TopDomains:     wdk.NewTopK(topDomainsPerFormat),
			TopDomainsURLs: wdk.NewTopK(topDomainsPerFormat),
		})
	}
	domains := NewBoundedMap[string, map[string]int64](capacity)

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < len(cols) {
			continue
		}
		report.Lines++
		if report.Lines%100000 == 0 {
			s.log.Printf("read %d page stat lines", report.Lines)
		}
		if err := report.addPage(fields, cols, domains); err != nil {
			s.log.Debugf("skipping page stat line %d: %v", report.Lines, err)
			s.stats.Count("pagestat.errors", 1, 1)
			report.Errors++
		}
		for domains.Over() {
			domain, triples, _ := domains.EvictOldest()
			report.foldDomain(domain, triples)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading page stats")
	}
	for domains.Len() > 0 {
		domain, triples, _ := domains.EvictOldest()
		report.foldDomain(domain, triples)
	}

	if report.MinTimestamp == math.MaxInt64 {
		report.MinTimestamp = 0
	}
	for _, f := range report.Formats {
		f.AvgTriplesPerURL = f.perURL.value()
		f.AvgTriplesPerDomain = f.perDomain.value()
	}
	s.stats.Count("pagestat.lines", report.Lines, 1)
	return report, nil
}

func (p *PageReport) addPage(fields []string, cols map[string]int, domains *BoundedMap[string, map[string]int64]) error {
	num := func(col string) (int64, error) {
		v, err := strconv.ParseInt(strings.TrimSpace(fields[cols[col]]), 10, 64)
		return v, errors.Wrapf(err, "parsing %s", col)
	}
	found, err := num("totalTriples")
	if err != nil {
		return err
	}
	meta, err := num("html-head-meta")
	if err != nil {
		return err
	}
	if found-meta < 1 {
		return nil
	}
	ts, err := num("timestamp")
	if err != nil {
		return err
	}
	size, err := num("recordLength")
	if err != nil {
		return err
	}
	u, err := url.Parse(fields[cols["uri"]])
	if err != nil {
		return errors.Wrap(err, "parsing uri")
	}
	if u.Hostname() == "" {
		return errors.Errorf("no host in uri %s", fields[cols["uri"]])
	}
	perFormat := make(map[string]int64, len(p.Formats))
	for _, f := range p.Formats {
		n, err := num(f.Format)
		if err != nil {
			return err
		}
		perFormat[f.Format] = n
	}

	p.TotalTriples += found
	p.TotalSize += wdk.Bytes(size)
	if ts < p.MinTimestamp {
		p.MinTimestamp = ts
	}
	if ts > p.MaxTimestamp {
		p.MaxTimestamp = ts
	}
	domain := wdk.PayLevelDomain(u.Hostname())
	p.TopDomainsURLs.Increment(domain)

	for _, f := range p.Formats {
		n := perFormat[f.Format]
		if n < 1 {
			continue
		}
		f.URLs++
		f.Triples += n
		f.perURL.add(n)
		f.TopDomainsURLs.Increment(domain)

		triples, ok := domains.Get(domain)
		if !ok {
			triples = make(map[string]int64)
			domains.Put(domain, triples)
		}
		triples[f.Format] += n
	}
	return nil
}
