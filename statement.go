package wdk

import (
	"fmt"
	"io"
	"strings"
)

// Well known IRIs used by the sinks.
const (
	RDFType       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	SchemaProduct = "http://schema.org/Product"
	VCardNS       = "http://www.w3.org/2006/vcard/ns#"
	VCardClass    = VCardNS + "VCard"
)

// TermKind distinguishes the three kinds of RDF terms.
type TermKind uint8

const (
	IRITerm TermKind = iota + 1
	BlankTerm
	LiteralTerm
)

func (k TermKind) String() string {
	switch k {
	case IRITerm:
		return "iri"
	case BlankTerm:
		return "blank"
	case LiteralTerm:
		return "literal"
	}
	return fmt.Sprintf("TermKind(%d)", uint8(k))
}

// Term is a single RDF term. For blank nodes Value holds the node label
// without the "_:" prefix. Lang and Datatype are only set on literals.
type Term struct {
	Kind     TermKind
	Value    string
	Lang     string
	Datatype string
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: IRITerm, Value: v} }

// Blank returns a blank node term. A leading "_:" is stripped.
func Blank(id string) Term { return Term{Kind: BlankTerm, Value: strings.TrimPrefix(id, "_:")} }

// Literal returns a plain literal term.
func Literal(v string) Term { return Term{Kind: LiteralTerm, Value: v} }

// Key returns the string under which the term is indexed and recorded:
// the IRI itself, "_:label" for blank nodes, or the lexical value of a
// literal.
func (t Term) Key() string {
	if t.Kind == BlankTerm {
		return "_:" + t.Value
	}
	return t.Value
}

// IsBlank reports whether the term is a blank node.
func (t Term) IsBlank() bool { return t.Kind == BlankTerm }

// Statement is a single quad. Graph is empty for triples read without a
// context.
type Statement struct {
	Subject   Term
	Predicate string
	Object    Term
	Graph     string
}

// SubjectKey is the key the statement is indexed under.
func (s Statement) SubjectKey() string {
	return s.Subject.Key()
}

// IsType reports whether the statement is an rdf:type statement.
func (s Statement) IsType() bool {
	return s.Predicate == RDFType
}

func (s Statement) String() string {
	return fmt.Sprintf("%s %s %s %s", s.Subject.Key(), s.Predicate, s.Object.Key(), s.Graph)
}

// StatementSource is a lazy, finite, non-restartable sequence of statements.
// Next returns io.EOF at the end of the stream. Implementations skip
// malformed input rather than returning it as an error.
type StatementSource interface {
	Next() (Statement, error)
}

// SliceSource is a StatementSource over a fixed slice of statements.
type SliceSource struct {
	stmts []Statement
	i     int
}

// NewSliceSource returns a StatementSource which yields stmts in order.
func NewSliceSource(stmts ...Statement) *SliceSource {
	return &SliceSource{stmts: stmts}
}

// Next implements StatementSource.
func (s *SliceSource) Next() (Statement, error) {
	if s.i >= len(s.stmts) {
		return Statement{}, io.EOF
	}
	s.i++
	return s.stmts[s.i-1], nil
}
