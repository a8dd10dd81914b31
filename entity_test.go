package wdk_test

import (
	"strings"
	"testing"

	"github.com/webdata/wdk"
	"github.com/webdata/wdk/test"
)

func TestEntity(t *testing.T) {
	e := wdk.Entity{Subject: "http://ex/1", Context: ctx}
	if !e.Empty() || e.HasType() {
		t.Fatalf("zero entity should be empty and untyped")
	}
	if _, err := e.Type(); err == nil {
		t.Fatalf("expected error for missing type")
	}

	e.Properties = map[string]string{
		name:        strings.Repeat("x", 120),
		wdk.RDFType: product,
	}
	typ, err := e.Type()
	test.ErrNil(t, err, "Type")
	test.MustBe(t, product, typ)
	test.MustBe(t, []string{name, wdk.RDFType}, e.Predicates())

	exp := "http://ex/1 (" + ctx + ")\n" +
		"\t" + name + ": " + strings.Repeat("x", 100) + "...\n" +
		"\t" + wdk.RDFType + ": " + product + "\n"
	test.MustBe(t, exp, e.String())
}
