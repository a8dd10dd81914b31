package wdk

import (
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// RawSource is the interface for getting the input files of a run one at a
// time. NextReader returns io.EOF once every file has been handed out.
// Implementations of RawSource should be thread safe.
type RawSource interface {
	NextReader() (NamedReadCloser, error)
}

// NamedReadCloser is a single input file.
type NamedReadCloser interface {
	io.ReadCloser
	Name() string
	Meta() map[string]interface{}
}

// Gzipped reports whether name is a gzip compressed file.
func Gzipped(name string) bool {
	return strings.HasSuffix(name, ".gz")
}

// Gunzip wraps rc so that reads return its decompressed contents if its
// name ends in ".gz". Other files are returned as they are. Closing the
// result closes rc.
func Gunzip(rc NamedReadCloser) (NamedReadCloser, error) {
	if !Gzipped(rc.Name()) {
		return rc, nil
	}
	zr, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, errors.Wrapf(err, "opening gzip stream %s", rc.Name())
	}
	return &gunzipped{Reader: zr, raw: rc}, nil
}

type gunzipped struct {
	*gzip.Reader
	raw NamedReadCloser
}

func (g *gunzipped) Name() string                 { return g.raw.Name() }
func (g *gunzipped) Meta() map[string]interface{} { return g.raw.Meta() }

func (g *gunzipped) Close() error {
	var errs Errors
	if err := g.Reader.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := g.raw.Close(); err != nil {
		errs = append(errs, err)
	}
	return errs.Err()
}
