package wdk

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// valueLength caps property values in Entity.String.
const valueLength = 100

// Entity is the flattened view of every statement sharing one subject key.
// Properties maps predicate to object string, and nested blank nodes are
// merged into their parent by predicate. Only the last value for a
// predicate is kept. Context is the graph of the first statement seen.
//
// An Entity with no Properties is the normal result of resolving a subject
// which has already been consumed or was never seen.
type Entity struct {
	Subject    string            `json:"@id"`
	Context    string            `json:"context,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Empty reports whether the entity has no properties.
func (e Entity) Empty() bool {
	return len(e.Properties) == 0
}

// HasType reports whether the entity carries an rdf:type property.
func (e Entity) HasType() bool {
	_, ok := e.Properties[RDFType]
	return ok
}

// Type returns the entity's rdf:type.
func (e Entity) Type() (string, error) {
	t, ok := e.Properties[RDFType]
	if !ok {
		return "", errors.Errorf("entity '%s' has no type", e.Subject)
	}
	return t, nil
}

// Predicates returns the entity's property keys in sorted order.
func (e Entity) Predicates() []string {
	preds := make([]string, 0, len(e.Properties))
	for p := range e.Properties {
		preds = append(preds, p)
	}
	sort.Strings(preds)
	return preds
}

func (e Entity) String() string {
	sb := strings.Builder{}
	sb.WriteString(e.Subject)
	sb.WriteString(" (")
	sb.WriteString(e.Context)
	sb.WriteString(")\n")
	for _, p := range e.Predicates() {
		v := e.Properties[p]
		if len(v) > valueLength {
			v = v[:valueLength] + "..."
		}
		sb.WriteString("\t")
		sb.WriteString(p)
		sb.WriteString(": ")
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	return sb.String()
}
