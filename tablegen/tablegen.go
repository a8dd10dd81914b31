package tablegen

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/webdata/wdk"
)

// TableCapacity is the reader window GenerateTable uses.
const TableCapacity = 100

// TableSpec describes a table of entities. Header lists the predicates
// which make up the columns. Trigger picks the statements whose subject is
// resolved into a row, and Accept, if set, decides whether a resolved
// entity's row is written.
type TableSpec struct {
	Header  []string
	Trigger func(s wdk.Statement) bool
	Accept  func(props map[string]string) bool
}

// HCard tables people and organisations marked up with hCard.
var HCard = TableSpec{
	Header: []string{
		wdk.VCardNS + "email",
		wdk.VCardNS + "family-name",
		wdk.VCardNS + "fn",
		wdk.VCardNS + "given-name",
		wdk.VCardNS + "url",
	},
	Trigger: func(s wdk.Statement) bool {
		return s.IsType() && s.Object.Value == wdk.VCardClass
	},
	Accept: func(props map[string]string) bool {
		return strings.TrimSpace(props[wdk.VCardNS+"fn"]) != ""
	},
}

// Tables maps the format names accepted on the command line to their
// table specs.
var Tables = map[string]TableSpec{
	"hcard": HCard,
}

// TableGenerator writes one CSV row per accepted entity. Missing properties
// are written as empty cells. Call Flush once the reader has finished.
type TableGenerator struct {
	spec TableSpec
	w    *csv.Writer
	log  wdk.Logger
	rows int64
	err  error
}

// NewTableGenerator writes spec's header to out and returns a generator
// writing rows after it.
func NewTableGenerator(spec TableSpec, out io.Writer, opts ...Option) (*TableGenerator, error) {
	if len(spec.Header) == 0 || spec.Trigger == nil {
		return nil, errors.New("table spec needs a header and a trigger")
	}
	s := newSettings(opts)
	g := &TableGenerator{
		spec: spec,
		w:    csv.NewWriter(out),
		log:  s.log,
	}
	if err := g.w.Write(spec.Header); err != nil {
		return nil, errors.Wrap(err, "writing header")
	}
	return g, nil
}

// Handle implements wdk.Handler. The first write error is kept and
// returned by Flush.
func (g *TableGenerator) Handle(r wdk.Resolver, st wdk.Statement) {
	if !g.spec.Trigger(st) {
		return
	}
	e := r.ResolveEntity(st.SubjectKey(), 0)
	if e.Empty() {
		return
	}
	if g.spec.Accept != nil && !g.spec.Accept(e.Properties) {
		g.log.Debugf("rejecting %s", e.Subject)
		return
	}
	row := make([]string, len(g.spec.Header))
	for i, col := range g.spec.Header {
		row[i] = e.Properties[col]
	}
	if err := g.w.Write(row); err != nil {
		if g.err == nil {
			g.err = errors.Wrapf(err, "writing row for %s", e.Subject)
		}
		return
	}
	g.rows++
}

// Rows returns the number of rows written, header excluded.
func (g *TableGenerator) Rows() int64 { return g.rows }

// Flush flushes buffered rows and returns the first error writing any of
// them.
func (g *TableGenerator) Flush() error {
	g.w.Flush()
	if g.err != nil {
		return g.err
	}
	return errors.Wrap(g.w.Error(), "flushing table")
}

// GenerateTable reads every statement of src through a reader of
// TableCapacity statements and writes spec's table to out. It returns the
// number of rows written.
func GenerateTable(spec TableSpec, src wdk.StatementSource, out io.Writer, opts ...Option) (int64, error) {
	g, err := NewTableGenerator(spec, out, opts...)
	if err != nil {
		return 0, err
	}
	r, err := wdk.NewReader(TableCapacity, g)
	if err != nil {
		return 0, errors.Wrap(err, "getting reader")
	}
	if err := r.Consume(src); err != nil {
		g.Flush()
		return g.Rows(), errors.Wrap(err, "reading statements")
	}
	return g.Rows(), g.Flush()
}
