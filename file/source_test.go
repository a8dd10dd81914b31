package file

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
	"github.com/webdata/wdk/test"
)

func readAll(t *testing.T, rs *RawSource) map[string]string {
	t.Helper()
	got := map[string]string{}
	for {
		rc, err := rs.NextReader()
		if err == io.EOF {
			return got
		} else if err != nil {
			t.Fatalf("unexpected NextReader error: %v", err)
		}
		buf, err := ioutil.ReadAll(rc)
		if err != nil {
			t.Fatalf("reading %s: %v", rc.Name(), err)
		}
		got[rc.Name()] = string(buf)
		if err := rc.Close(); err != nil {
			t.Fatalf("closing %s: %v", rc.Name(), err)
		}
	}
}

func TestRawSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	test.MemFile(t, fs, "/crawl/b.nq", "blah blah blah")
	test.MemFile(t, fs, "/crawl/a.nq.gz", test.Gzip(t, "hahahahahahahaha"))
	test.MemFile(t, fs, "/crawl/notes.txt", "not input")
	test.MemFile(t, fs, "/crawl/sub/c.nq", "nested")

	rs, err := NewRawSource("/crawl", OptRawFs(fs))
	test.ErrNil(t, err, "getting raw source")
	test.MustBe(t, []string{"/crawl/a.nq.gz", "/crawl/b.nq", "/crawl/notes.txt"}, rs.Files())
	test.MustBe(t, map[string]string{
		"a.nq.gz":   "hahahahahahahaha",
		"b.nq":      "blah blah blah",
		"notes.txt": "not input",
	}, readAll(t, rs))

	rs, err = NewRawSource("/crawl", OptRawFs(fs), OptRawPattern("*.nq*"))
	test.ErrNil(t, err, "getting filtered raw source")
	test.MustBe(t, []string{"/crawl/a.nq.gz", "/crawl/b.nq"}, rs.Files())

	rs, err = NewRawSource("/crawl/b.nq", OptRawFs(fs))
	test.ErrNil(t, err, "getting single file source")
	test.MustBe(t, map[string]string{"b.nq": "blah blah blah"}, readAll(t, rs))

	if _, err := NewRawSource("/nope", OptRawFs(fs)); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestRawSourceCorruptGzip(t *testing.T) {
	fs := afero.NewMemMapFs()
	test.MemFile(t, fs, "/bad.nq.gz", "not gzip at all")
	rs, err := NewRawSource("/bad.nq.gz", OptRawFs(fs))
	test.ErrNil(t, err, "getting raw source")
	if _, err := rs.NextReader(); err == nil {
		t.Fatalf("expected error opening corrupt gzip file")
	}
}

func TestRawSourceOsFs(t *testing.T) {
	d, err := ioutil.TempDir("", "testrawsource")
	if err != nil {
		t.Fatalf("getting temp dir: %v", err)
	}
	defer os.RemoveAll(d)
	if err := ioutil.WriteFile(filepath.Join(d, "x.nq"), []byte("x"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	rs, err := NewRawSource(d)
	test.ErrNil(t, err, "getting raw source")
	rc, err := rs.NextReader()
	test.ErrNil(t, err, "NextReader")
	defer rc.Close()
	if !reflect.DeepEqual(rc.Meta(), map[string]interface{}{"path": filepath.Join(d, "x.nq"), "size": int64(1)}) {
		t.Fatalf("unexpected meta: %v", rc.Meta())
	}
}
