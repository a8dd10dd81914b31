package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/test"
)

const cards = `<http://ex.org/v1> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2006/vcard/ns#VCard> <http://ex.org/> .
<http://ex.org/v1> <http://www.w3.org/2006/vcard/ns#fn> "Jane Doe" <http://ex.org/> .
<http://ex.org/v1> <http://www.w3.org/2006/vcard/ns#email> "jane@ex.org" <http://ex.org/> .
_:v2 <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2006/vcard/ns#VCard> <http://ex.org/> .
_:v2 <http://www.w3.org/2006/vcard/ns#given-name> "Nobody" <http://ex.org/> .
`

func TestTableName(t *testing.T) {
	for in, exp := range map[string]string{
		"part-0.nq.gz":       "part-0.csv",
		"crawl/part-1.nq":    "part-1.csv",
		"noext":              "noext.csv",
		"dir\\windows.nq.gz": "windows.csv",
	} {
		test.MustBe(t, exp, tableName(in), in)
	}
}

func TestRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	test.MemFile(t, fs, "/in/a.nq", cards)
	test.MemFile(t, fs, "/in/b.nq.gz", test.Gzip(t, cards))
	out := &bytes.Buffer{}
	m := NewMain()
	m.Fs, m.Out = fs, out
	m.Path = "/in"
	m.Capacity = 10
	m.Concurrency = 2
	m.OutDir = "/tables"
	test.ErrNil(t, m.Run(), "running table generation")

	test.MustBe(t, map[string]int64{"a.csv": 1, "b.csv": 1}, m.Tables)
	ns := wdk.VCardNS
	exp := ns + "email," + ns + "family-name," + ns + "fn," + ns + "given-name," + ns + "url\n" +
		"jane@ex.org,,Jane Doe,,\n"
	for _, name := range []string{"/tables/a.csv", "/tables/b.csv"} {
		data, err := afero.ReadFile(fs, name)
		test.ErrNil(t, err, "reading "+name)
		test.MustBe(t, exp, string(data), name)
	}
	if !strings.Contains(out.String(), `"a.csv": 1`) {
		t.Fatalf("unexpected summary: %s", out.String())
	}
}

func TestRunUnknownFormat(t *testing.T) {
	m := NewMain()
	m.Format = "hcalendar"
	err := m.Run()
	if err == nil || !strings.Contains(err.Error(), "known: hcard") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}
