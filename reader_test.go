package wdk_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/mock"
	"github.com/webdata/wdk/test"
)

const (
	ctx     = "http://ex.org/page"
	name    = "http://schema.org/name"
	product = wdk.SchemaProduct
)

var noop = wdk.HandlerFunc(func(wdk.Resolver, wdk.Statement) {})

// typeSink resolves every subject whose rdf:type statement it sees.
type typeSink struct {
	handled  int
	entities []wdk.Entity
}

func (s *typeSink) Handle(r wdk.Resolver, st wdk.Statement) {
	s.handled++
	if !st.IsType() {
		return
	}
	if e := r.ResolveEntity(st.SubjectKey(), 0); !e.Empty() {
		s.entities = append(s.entities, e)
	}
}

func TestNewReaderCapacity(t *testing.T) {
	_, err := wdk.NewReader(9, noop)
	if errors.Cause(err) != wdk.ErrCapacity {
		t.Fatalf("expected ErrCapacity for capacity 9, got %v", err)
	}
	r, err := wdk.NewReader(wdk.MinCapacity, noop)
	test.ErrNil(t, err, "NewReader at minimum capacity")
	test.MustBe(t, 10, r.Capacity())
}

func TestReaderEndToEnd(t *testing.T) {
	sink := &typeSink{}
	r, err := wdk.NewReader(10, sink)
	test.ErrNil(t, err, "NewReader")

	r.Add(test.Stmt("http://ex/1", wdk.RDFType, product, ctx))
	r.Add(test.Stmt("http://ex/1", name, `"Widget"`, ctx))
	test.MustBe(t, 0, sink.handled, "handled before finish")
	r.Finish()

	if len(sink.entities) != 1 {
		t.Fatalf("expected exactly one entity, got %v", sink.entities)
	}
	e := sink.entities[0]
	test.MustBe(t, "http://ex/1", e.Subject)
	test.MustBe(t, ctx, e.Context)
	test.MustBe(t, map[string]string{wdk.RDFType: product, name: "Widget"}, e.Properties)
	test.MustBe(t, 2, sink.handled, "handled")
	test.MustBe(t, int64(1), r.EntitiesRead())
	test.MustBe(t, 0, r.Indexed())

	r.Finish()
	test.MustBe(t, 2, sink.handled, "handled after second finish")
}

func TestReaderCapacityInvariant(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for _, capacity := range []int{10, 11, 25, 100} {
		resolving := wdk.HandlerFunc(func(r wdk.Resolver, s wdk.Statement) {
			if rnd.Intn(3) == 0 {
				r.ResolveEntity(s.SubjectKey(), 0)
			}
		})
		for _, h := range []wdk.Handler{noop, resolving} {
			r, err := wdk.NewReader(capacity, h)
			test.ErrNil(t, err, "NewReader")
			for i := 0; i < 2000; i++ {
				subj := fmt.Sprintf("http://ex/%d", rnd.Intn(30))
				obj := fmt.Sprintf(`"%d"`, i)
				if rnd.Intn(5) == 0 {
					obj = fmt.Sprintf("_:b%d", rnd.Intn(30))
				}
				r.Add(test.Stmt(subj, fmt.Sprintf("http://ex/p%d", rnd.Intn(4)), obj, ctx))
				if r.Len() > capacity {
					t.Fatalf("capacity %d: buffer holds %d statements", capacity, r.Len())
				}
				if r.Indexed() > capacity {
					t.Fatalf("capacity %d: index holds %d statements", capacity, r.Indexed())
				}
				if r.HeadLen() > capacity/2 {
					t.Fatalf("capacity %d: head holds %d statements", capacity, r.HeadLen())
				}
			}
		}
	}
}

func TestResolveOnce(t *testing.T) {
	r, err := wdk.NewReader(100, noop)
	test.ErrNil(t, err, "NewReader")
	r.Add(test.Stmt("http://ex/1", name, `"one"`, ctx))
	r.Add(test.Stmt("http://ex/2", name, `"two"`, ctx))

	e := r.ResolveEntity("http://ex/1", 0)
	test.MustBe(t, map[string]string{name: "one"}, e.Properties)

	e = r.ResolveEntity("http://ex/1", 0)
	if !e.Empty() {
		t.Fatalf("second resolution should be empty: %v", e)
	}
	test.MustBe(t, "http://ex/1", e.Subject)
	if !r.HasEntry("http://ex/2") {
		t.Fatalf("resolving ex/1 consumed ex/2")
	}
	test.MustBe(t, 1, r.Indexed())
	test.MustBe(t, int64(1), r.EntitiesRead())

	e = r.ResolveEntity("http://ex/never", 0)
	if !e.Empty() {
		t.Fatalf("unknown subject resolved to %v", e)
	}
	test.MustBe(t, int64(1), r.EntitiesRead())
}

func TestResolveDepthLimit(t *testing.T) {
	r, err := wdk.NewReader(100, noop)
	test.ErrNil(t, err, "NewReader")

	r.Add(test.Stmt("http://ex/root", "http://ex/lvl0", `"0"`, ctx))
	r.Add(test.Stmt("http://ex/root", "http://ex/link0", "_:b1", ctx))
	for i := 1; i <= 5; i++ {
		subj := fmt.Sprintf("_:b%d", i)
		r.Add(test.Stmt(subj, fmt.Sprintf("http://ex/lvl%d", i), fmt.Sprintf(`"%d"`, i), ctx))
		r.Add(test.Stmt(subj, fmt.Sprintf("http://ex/link%d", i), fmt.Sprintf("_:b%d", i+1), ctx))
	}

	e := r.ResolveEntity("http://ex/root", 0)
	for i := 0; i <= 5; i++ {
		pred := fmt.Sprintf("http://ex/lvl%d", i)
		_, ok := e.Properties[pred]
		if i <= wdk.DepthLimit && !ok {
			t.Errorf("missing %s at depth %d: %v", pred, i, e.Properties)
		}
		if i > wdk.DepthLimit && ok {
			t.Errorf("unexpected %s at depth %d: %v", pred, i, e.Properties)
		}
	}
	if _, ok := e.Properties["http://ex/link0"]; ok {
		t.Errorf("blank node links should not be recorded as values: %v", e.Properties)
	}
	test.MustBe(t, int64(wdk.DepthLimit+1), r.EntitiesRead())
	if !r.HasEntry("_:b4") {
		t.Fatalf("blank node beyond the depth limit should stay indexed")
	}

	if e := r.ResolveEntity("_:b4", wdk.DepthLimit+1); !e.Empty() {
		t.Fatalf("resolution beyond the depth limit should be empty: %v", e)
	}
	if !r.HasEntry("_:b4") {
		t.Fatalf("resolution beyond the depth limit consumed statements")
	}
}

func TestResolveMerge(t *testing.T) {
	r, err := wdk.NewReader(100, noop)
	test.ErrNil(t, err, "NewReader")

	r.Add(test.Stmt("http://ex/1", name, `"first"`, "http://ex.org/a"))
	r.Add(test.Stmt("http://ex/1", "http://ex/self", "_:x", "http://ex.org/b"))
	r.Add(test.Stmt("_:x", "http://ex/loop", "_:x", ctx))
	r.Add(test.Stmt("_:x", "http://ex/price", `"5"`, ctx))
	r.Add(test.Stmt("_:x", name, `"nested"`, ctx))
	r.Add(test.Stmt("http://ex/1", "http://ex/dangling", "_:nothing", ctx))
	r.Add(test.Stmt("http://ex/1", "http://ex/url", "http://ex.org/u", ctx))

	e := r.ResolveEntity("http://ex/1", 0)
	test.MustBe(t, "http://ex.org/a", e.Context)
	test.MustBe(t, map[string]string{
		name:              "nested",
		"http://ex/price": "5",
		"http://ex/url":   "http://ex.org/u",
	}, e.Properties)
	test.MustBe(t, 0, r.Indexed())
}

func TestResolveLastWriteWins(t *testing.T) {
	r, err := wdk.NewReader(100, noop)
	test.ErrNil(t, err, "NewReader")
	r.Add(test.Stmt("http://ex/1", "http://ex/b", "_:b", ctx))
	r.Add(test.Stmt("_:b", name, `"nested"`, ctx))
	r.Add(test.Stmt("http://ex/1", name, `"parent"`, ctx))

	e := r.ResolveEntity("http://ex/1", 0)
	test.MustBe(t, "parent", e.Properties[name])
}

func TestReaderDrop(t *testing.T) {
	stats := &mock.RecordingStatter{}
	r, err := wdk.NewReader(10, noop, wdk.OptReaderStatter(stats))
	test.ErrNil(t, err, "NewReader")

	r.Add(test.Stmt("http://ex/s", "http://ex/p1", `"1"`, ctx))
	r.ResolveEntity("http://ex/s", 0)
	r.Add(test.Stmt("http://ex/s", "http://ex/p2", `"2"`, ctx))
	r.Add(test.Stmt("http://ex/old", "http://ex/p", `"old"`, ctx))
	for i := 0; i < 8; i++ {
		r.Add(test.Stmt(fmt.Sprintf("http://ex/t%d", i), "http://ex/p", `"t"`, ctx))
	}
	// the consumed first statement of ex/s has now left the window
	test.MustBe(t, 10, r.Len())
	if !r.HasEntry("http://ex/s") {
		t.Fatalf("dropping a consumed statement removed a newer one")
	}
	test.MustBe(t, int64(0), stats.Counts["reader.dropped"])

	r.Add(test.Stmt("http://ex/t8", "http://ex/p", `"t"`, ctx))
	r.Add(test.Stmt("http://ex/t9", "http://ex/p", `"t"`, ctx))
	if r.HasEntry("http://ex/s") || r.HasEntry("http://ex/old") {
		t.Fatalf("unresolved statements should be dropped once they leave the window")
	}
	test.MustBe(t, int64(2), stats.Counts["reader.dropped"])
	test.MustBe(t, 10, r.Indexed())
	test.MustBe(t, int64(13), stats.Counts["reader.statements"])
}

// A subject is handled each time one of its statements leaves the head
// window, and each handling sees the statements added since the last one.
func TestReaderReresolution(t *testing.T) {
	var resolved []wdk.Entity
	calls := 0
	h := wdk.HandlerFunc(func(r wdk.Resolver, s wdk.Statement) {
		if s.SubjectKey() != "http://ex/s" {
			return
		}
		calls++
		if e := r.ResolveEntity(s.SubjectKey(), 0); !e.Empty() {
			resolved = append(resolved, e)
		}
	})
	r, err := wdk.NewReader(10, h)
	test.ErrNil(t, err, "NewReader")

	unrelated := 0
	addUnrelated := func(n int) {
		for i := 0; i < n; i++ {
			r.Add(test.Stmt(fmt.Sprintf("http://ex/u%d", unrelated), "http://ex/p", `"u"`, ctx))
			unrelated++
		}
	}
	r.Add(test.Stmt("http://ex/s", "http://ex/p1", `"a"`, ctx))
	addUnrelated(6)
	r.Add(test.Stmt("http://ex/s", "http://ex/p2", `"b"`, ctx))
	addUnrelated(6)
	r.Finish()

	if calls < 1 {
		t.Fatalf("subject never handled")
	}
	test.MustBe(t, 2, calls, "handle calls")
	test.MustBe(t, 2, len(resolved), "resolutions")
	test.MustBe(t, map[string]string{"http://ex/p1": "a"}, resolved[0].Properties)
	test.MustBe(t, map[string]string{"http://ex/p2": "b"}, resolved[1].Properties)
}

type failingSource struct{ n int }

func (f *failingSource) Next() (wdk.Statement, error) {
	if f.n == 0 {
		return wdk.Statement{}, errors.New("connection reset")
	}
	f.n--
	return test.Stmt("http://ex/1", wdk.RDFType, product, ctx), nil
}

func TestReaderConsume(t *testing.T) {
	sink := &typeSink{}
	r, err := wdk.NewReader(10, sink)
	test.ErrNil(t, err, "NewReader")
	err = r.Consume(wdk.NewSliceSource(
		test.Stmt("http://ex/1", wdk.RDFType, product, ctx),
		test.Stmt("http://ex/1", name, `"Widget"`, ctx),
	))
	test.ErrNil(t, err, "Consume")
	test.MustBe(t, 1, len(sink.entities))

	r, err = wdk.NewReader(10, sink)
	test.ErrNil(t, err, "NewReader")
	if err := r.Consume(&failingSource{n: 2}); err == nil {
		t.Fatalf("expected error from failing source")
	}
}
