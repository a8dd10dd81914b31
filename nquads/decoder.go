// Package nquads decodes N-Quads into wdk statements using knakk/rdf. Each
// line is decoded on its own, so a malformed line is skipped without losing
// the rest of the stream.
package nquads

import (
	"bufio"
	"io"
	"strings"

	"github.com/knakk/rdf"
	"github.com/pkg/errors"
	"github.com/webdata/wdk"
)

// DecoderOption is a functional option for NewDecoder.
type DecoderOption func(d *Decoder)

// OptDecoderLogger sets the logger malformed lines are reported to.
func OptDecoderLogger(l wdk.Logger) DecoderOption {
	return func(d *Decoder) {
		d.log = l
	}
}

// OptDecoderStatter sets the Statter skipped lines are counted into.
func OptDecoderStatter(s wdk.Statter) DecoderOption {
	return func(d *Decoder) {
		d.stats = s
	}
}

// OptDecoderName names the stream in log messages.
func OptDecoderName(name string) DecoderOption {
	return func(d *Decoder) {
		d.name = name
	}
}

// Decoder is a wdk.StatementSource reading one statement per line.
type Decoder struct {
	r       *bufio.Reader
	name    string
	line    int
	skipped int64

	log   wdk.Logger
	stats wdk.Statter
}

// NewDecoder gets a new Decoder reading from r.
func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		r:     bufio.NewReaderSize(r, 1<<16),
		name:  "stream",
		log:   wdk.NopLogger{},
		stats: wdk.NopStatter{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDecoderFunc returns a wdk.DecoderFunc which creates Decoders with opts,
// named after the file they read.
func NewDecoderFunc(opts ...DecoderOption) wdk.DecoderFunc {
	return func(r io.Reader, name string) wdk.StatementSource {
		return NewDecoder(r, append(opts, OptDecoderName(name))...)
	}
}

// Next returns the next well formed statement. Blank lines, comments and
// malformed lines are skipped. It returns io.EOF at the end of the input,
// and any other error only if reading the input fails.
func (d *Decoder) Next() (wdk.Statement, error) {
	for {
		line, err := d.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return wdk.Statement{}, errors.Wrapf(err, "reading %s after line %d", d.name, d.line)
		}
		if line == "" && err == io.EOF {
			return wdk.Statement{}, io.EOF
		}
		d.line++
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		s, perr := ParseLine(trimmed)
		if perr != nil {
			d.skipped++
			d.stats.Count("nquads.skipped", 1, 1.0)
			d.log.Debugf("%s:%d: skipping malformed statement: %v", d.name, d.line, perr)
			continue
		}
		return s, nil
	}
}

// Skipped returns the number of malformed lines skipped so far.
func (d *Decoder) Skipped() int64 { return d.skipped }

// Line returns the number of lines read so far.
func (d *Decoder) Line() int { return d.line }

// ParseLine decodes a single N-Quads or N-Triples line.
func ParseLine(line string) (wdk.Statement, error) {
	dec := rdf.NewQuadDecoder(strings.NewReader(line), rdf.NQuads)
	dec.DefaultGraph = nil
	q, err := dec.Decode()
	if err == io.EOF {
		return wdk.Statement{}, errors.New("no statement on line")
	} else if err != nil {
		return wdk.Statement{}, errors.Wrap(err, "decoding quad")
	}
	return FromQuad(q), nil
}

// FromQuad converts a knakk/rdf quad into a statement. A nil context
// gives an empty Graph.
func FromQuad(q rdf.Quad) wdk.Statement {
	s := wdk.Statement{
		Subject:   fromTerm(q.Subj),
		Predicate: q.Pred.String(),
		Object:    fromTerm(q.Obj),
	}
	if q.Ctx != nil {
		s.Graph = q.Ctx.String()
	}
	return s
}

func fromTerm(t rdf.Term) wdk.Term {
	switch t.Type() {
	case rdf.TermBlank:
		return wdk.Blank(t.String())
	case rdf.TermLiteral:
		ret := wdk.Literal(t.String())
		if l, ok := t.(rdf.Literal); ok {
			ret.Lang = l.Lang()
			ret.Datatype = l.DataType.String()
		}
		return ret
	}
	return wdk.IRI(t.String())
}
