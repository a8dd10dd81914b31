package entitystats

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/tablegen"
	"github.com/webdata/wdk/test"
)

const products = `<http://ex/1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://schema.org/Product> <http://a.org/p> .
<http://ex/1> <http://schema.org/name> "Widget" <http://a.org/p> .
<http://ex/1> <http://schema.org/price> "5" <http://a.org/p> .
<http://ex/1> <http://www.w3.org/1999/xhtml/vocab#role> "main" <http://a.org/p> .
_:b1 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://schema.org/Product> <http://a.org/q> .
_:b1 <http://schema.org/name> "Gadget" <http://a.org/q> .
_:o <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://schema.org/Offer> <http://a.org/q> .
`

func TestRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	test.MemFile(t, fs, "/in/products.nq", products)
	out := &bytes.Buffer{}
	m := NewMain()
	m.Fs, m.Out = fs, out
	m.Path = "/in/products.nq"
	m.Capacity = 10
	test.ErrNil(t, m.Run(), "running entity stats")

	rep := tablegen.EntityReport{}
	test.ErrNil(t, json.Unmarshal(out.Bytes(), &rep), "decoding report")
	test.MustBe(t, wdk.SchemaProduct, rep.Class)
	test.MustBe(t, int64(2), rep.Entities)
	test.MustBe(t, wdk.Description{Min: 2, Max: 4, Mean: 3, Median: 3, Count: 2}, rep.Properties)
	test.MustBe(t, []wdk.KeyCount{
		{Key: "http://schema.org/name", Count: 2},
		{Key: wdk.RDFType, Count: 2},
		{Key: "http://schema.org/price", Count: 1},
	}, rep.Counts)
}

func TestRunConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	test.MemFile(t, fs, "/in/products.nq", products)
	test.MemFile(t, fs, "/conf.yaml", "evil-namespaces: []\n")
	out := &bytes.Buffer{}
	m := NewMain()
	m.Fs, m.Out = fs, out
	m.Path = "/in/products.nq"
	m.Capacity = 10
	m.Extraction = "/conf.yaml"
	m.Class = "http://schema.org/Offer"
	test.ErrNil(t, m.Run(), "running entity stats")

	rep := tablegen.EntityReport{}
	test.ErrNil(t, json.Unmarshal(out.Bytes(), &rep), "decoding report")
	test.MustBe(t, int64(1), rep.Entities)

	m.Extraction = "/missing.yaml"
	if err := m.Run(); err == nil {
		t.Fatalf("expected error for missing config")
	}
	m.Class = ""
	if err := m.Run(); err == nil {
		t.Fatalf("expected error without a class")
	}
}
