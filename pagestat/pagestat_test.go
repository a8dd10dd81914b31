package pagestat

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/webdata/wdk"
	"github.com/webdata/wdk/mock"
	"github.com/webdata/wdk/test"
)

func TestBoundedMap(t *testing.T) {
	b := NewBoundedMap[string, int](2)
	b.Put("a", 1)
	b.Put("b", 2)
	if b.Over() {
		t.Fatalf("map at capacity should not be over")
	}
	b.Put("c", 3)
	if !b.Over() {
		t.Fatalf("expected map to be over capacity with %d keys", b.Len())
	}
	// touching a makes b the oldest
	if v, ok := b.Get("a"); !ok || v != 1 {
		t.Fatalf("unexpected value for a: %v, %v", v, ok)
	}
	k, v, ok := b.EvictOldest()
	test.MustBe(t, "b", k)
	test.MustBe(t, 2, v)
	test.MustBe(t, true, ok)
	if b.Over() || b.Len() != 2 {
		t.Fatalf("expected 2 keys after eviction, got %d", b.Len())
	}
	b.EvictOldest()
	b.EvictOldest()
	if _, _, ok := b.EvictOldest(); ok {
		t.Fatalf("expected empty map to have nothing to evict")
	}
}

const pageStats = "uri\ttimestamp\trecordLength\ttotalTriples\thtml-head-meta\thtml-rdfa\thtml-microdata\n" +
	"http://www.a.com/1\t100\t1000\t5\t0\t3\t2\n" +
	"http://shop.a.com/2\t50\t500\t4\t0\t0\t4\n" +
	"http://b.org/x\t200\t200\t2\t2\t2\t0\n" +
	"http://b.org/y\t300\t100\t7\t1\t6\t0\n" +
	"http://c.net/\tabc\t1\t1\t0\t1\t0\n" +
	"short\tline\n"

func TestReadPageStats(t *testing.T) {
	conf := wdk.Config{Formats: []string{"html-rdfa", "html-microdata"}}
	for _, capacity := range []int{1, DomainCapacity} {
		stats := &mock.RecordingStatter{}
		report, err := ReadPageStats(strings.NewReader(pageStats), conf, capacity, OptStatter(stats))
		test.ErrNil(t, err, "reading page stats")

		test.MustBe(t, int64(5), report.Lines, "lines")
		test.MustBe(t, int64(1), report.Errors, "errors")
		test.MustBe(t, int64(1), stats.Counts["pagestat.errors"])
		test.MustBe(t, int64(16), report.TotalTriples, "total triples")
		test.MustBe(t, wdk.Bytes(1600), report.TotalSize, "total size")
		test.MustBe(t, int64(50), report.MinTimestamp)
		test.MustBe(t, int64(300), report.MaxTimestamp)
		test.MustBe(t, map[string]int64{"a.com": 2, "b.org": 1}, report.TopDomainsURLs.Map())
		test.MustBe(t, map[string]int64{"a.com": 9, "b.org": 6}, report.TopDomains.Map())

		rdfa := report.Format("html-rdfa")
		test.MustBe(t, int64(9), rdfa.Triples)
		test.MustBe(t, int64(2), rdfa.URLs)
		test.MustBe(t, int64(2), rdfa.Domains)
		test.MustBe(t, 4.5, rdfa.AvgTriplesPerURL)
		test.MustBe(t, 4.5, rdfa.AvgTriplesPerDomain)
		test.MustBe(t, []wdk.KeyCount{{Key: "b.org", Count: 6}, {Key: "a.com", Count: 3}}, rdfa.TopDomains.Sorted())

		md := report.Format("html-microdata")
		test.MustBe(t, int64(6), md.Triples)
		test.MustBe(t, int64(1), md.Domains)
		test.MustBe(t, 3.0, md.AvgTriplesPerURL)
		test.MustBe(t, 6.0, md.AvgTriplesPerDomain)
	}
}

func TestReadPageStatsJSON(t *testing.T) {
	conf := wdk.Config{Formats: []string{"html-rdfa"}}
	in := "uri\ttimestamp\trecordLength\ttotalTriples\thtml-head-meta\thtml-rdfa\n" +
		"http://a.com/\t1\t2048\t3\t0\t3\n"
	report, err := ReadPageStats(strings.NewReader(in), conf, DomainCapacity)
	test.ErrNil(t, err, "reading page stats")
	buf, err := json.Marshal(report)
	test.ErrNil(t, err, "marshaling report")
	for _, want := range []string{
		`"totalSize":{"bytes":2048,"human":"2K"}`,
		`"topDomains":[{"key":"a.com","count":3}]`,
		`"extractor":"html-rdfa"`,
	} {
		if !strings.Contains(string(buf), want) {
			t.Errorf("expected %s in %s", want, buf)
		}
	}
}

func TestReadPageStatsHeader(t *testing.T) {
	conf := wdk.Config{Formats: []string{"html-rdfa"}}
	if _, err := ReadPageStats(strings.NewReader(""), conf, 10); err == nil {
		t.Fatalf("expected error for empty input")
	}
	_, err := ReadPageStats(strings.NewReader("uri\ttimestamp\n"), conf, 10)
	if err == nil || !strings.Contains(err.Error(), "missing column recordLength") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestReadDataStats(t *testing.T) {
	in := "pagesTotal,pagesParsed,pagesTriples,size,duration,rate\n" +
		"10,8,4,1024,30,2.5\n" +
		"20,18,6,2048,90,NaN\n"
	log := &mock.RecordingLogger{}
	report, err := ReadDataStats(strings.NewReader(in), OptLogger(log))
	test.ErrNil(t, err, "reading data stats")
	test.MustBe(t, &DataReport{
		PagesTotal:            30,
		PagesParsed:           26,
		PagesWithTriples:      10,
		TotalSize:             3072,
		CPUHours:              2,
		AveragePagesPerSecond: 2.5,
	}, report)
	test.MustBe(t, "3K", report.TotalSize.String())
	test.MustBe(t, 1, len(log.Lines))

	if _, err := ReadDataStats(strings.NewReader(in + "1,2,x,4,5,6\n")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := ReadDataStats(strings.NewReader("size,rate\n")); err == nil {
		t.Fatalf("expected missing column error")
	}
}
