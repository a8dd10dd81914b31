// Package file reads input files from a filesystem.
package file

import (
	"io"
	"path/filepath"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/webdata/wdk"
)

// RawSourceOption is a functional option for NewRawSource.
type RawSourceOption func(s *RawSource)

// OptRawFs sets the filesystem files are read from. The default is the
// operating system's.
func OptRawFs(fs afero.Fs) RawSourceOption {
	return func(s *RawSource) {
		s.fs = fs
	}
}

// OptRawPattern restricts a directory source to the files whose base name
// matches pattern, as understood by filepath.Match.
func OptRawPattern(pattern string) RawSourceOption {
	return func(s *RawSource) {
		s.pattern = pattern
	}
}

// RawSource is a wdk.RawSource which hands out a single file, or every
// regular file in a directory in name order. Files ending in ".gz" are
// decompressed.
type RawSource struct {
	fs      afero.Fs
	pattern string
	files   []string
	fileIdx *uint64
}

// NewRawSource gets a new RawSource for the file or directory at pathname.
func NewRawSource(pathname string, opts ...RawSourceOption) (*RawSource, error) {
	fileIdx := uint64(0)
	s := &RawSource{
		fs:      afero.NewOsFs(),
		fileIdx: &fileIdx,
	}
	for _, opt := range opts {
		opt(s)
	}
	info, err := s.fs.Stat(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "statting path")
	}
	if !info.IsDir() {
		s.files = []string{pathname}
		return s, nil
	}
	infos, err := afero.ReadDir(s.fs, pathname)
	if err != nil {
		return nil, errors.Wrap(err, "reading directory")
	}
	s.files = make([]string, 0, len(infos))
	for _, info = range infos {
		if info.IsDir() {
			continue
		}
		if s.pattern != "" {
			ok, err := filepath.Match(s.pattern, info.Name())
			if err != nil {
				return nil, errors.Wrapf(err, "matching %s", s.pattern)
			}
			if !ok {
				continue
			}
		}
		s.files = append(s.files, filepath.Join(pathname, info.Name()))
	}
	return s, nil
}

// Files returns the paths the source hands out.
func (s *RawSource) Files() []string { return s.files }

type metaFile struct {
	afero.File
	size int64
}

func (m *metaFile) Name() string {
	return filepath.Base(m.File.Name())
}

func (m *metaFile) Meta() map[string]interface{} {
	return map[string]interface{}{
		"path": m.File.Name(),
		"size": m.size,
	}
}

// NextReader implements wdk.RawSource.
func (s *RawSource) NextReader() (wdk.NamedReadCloser, error) {
	idx := atomic.AddUint64(s.fileIdx, 1) - 1
	if int(idx) >= len(s.files) {
		return nil, io.EOF
	}

	f, err := s.fs.Open(s.files[idx])
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.files[idx])
	}
	mf := &metaFile{File: f}
	if info, err := f.Stat(); err == nil {
		mf.size = info.Size()
	}
	return wdk.Gunzip(mf)
}
