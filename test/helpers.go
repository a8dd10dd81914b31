// Package test holds helpers shared by the tests of the wdk packages.
package test

import (
	"bytes"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/webdata/wdk"
)

// MustBe uses reflect.DeepEqual to assert that thing1 and thing2 are equal, and
// fails otherwise.
func MustBe(t *testing.T, thing1, thing2 interface{}, context ...string) {
	t.Helper()
	var ctx string
	if len(context) == 0 {
		ctx = ""
	} else {
		ctx = context[0] + ": "
	}
	if !reflect.DeepEqual(thing1, thing2) {
		t.Fatalf("%v'%#v' != '%#v'", ctx, thing1, thing2)
	}
}

// ErrNil asserts that the err is nil and fails otherwise.
func ErrNil(t *testing.T, err error, ctx string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%v: %v", ctx, err)
	}
}

// Uint64Slice implements the sorting interface on []uint64.
type Uint64Slice []uint64

func (p Uint64Slice) Len() int           { return len(p) }
func (p Uint64Slice) Less(i, j int) bool { return p[i] < p[j] }
func (p Uint64Slice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// Stmt builds a statement from N-Triples-like shorthand: terms starting
// with "_:" are blank nodes, terms wrapped in double quotes are literals, and
// anything else is an IRI.
func Stmt(s, p, o, g string) wdk.Statement {
	return wdk.Statement{
		Subject:   term(s),
		Predicate: p,
		Object:    term(o),
		Graph:     g,
	}
}

func term(v string) wdk.Term {
	switch {
	case strings.HasPrefix(v, "_:"):
		return wdk.Blank(v)
	case len(v) >= 2 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`):
		return wdk.Literal(v[1 : len(v)-1])
	}
	return wdk.IRI(v)
}

// MemFile writes contents to name on fs, failing the test on error.
func MemFile(t *testing.T, fs afero.Fs, name, contents string) {
	t.Helper()
	if err := afero.WriteFile(fs, name, []byte(contents), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

// Gzip returns s compressed as a gzip stream.
func Gzip(t *testing.T, s string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	w := gzip.NewWriter(buf)
	if _, err := io.WriteString(w, s); err != nil {
		t.Fatalf("compressing: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return buf.String()
}
