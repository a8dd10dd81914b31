package cooc

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/boltdb"
	"github.com/webdata/wdk/leveldb"
)

// Main holds the options for mining co-occurrence groups.
type Main struct {
	Path      string   `help:"Tab separated file of key pairs and their co-occurrence counts."`
	Threshold float64  `help:"Minimum support of a group relative to the sum of all counts."`
	MinSize   int      `help:"Minimum number of keys in a group."`
	Exclude   []string `help:"Keys whose pairs are ignored."`
	Store     string   `help:"Where keys are interned: memory, leveldb or bolt."`
	StorePath string   `help:"Directory (leveldb) or file (bolt) of the key store."`

	Fs  afero.Fs   `flag:"-"`
	Out io.Writer  `flag:"-"`
	Log wdk.Logger `flag:"-"`
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Threshold: 0.02,
		MinSize:   2,
		Store:     "memory",
		Fs:        afero.NewOsFs(),
		Out:       os.Stdout,
		Log:       wdk.NopLogger{},
	}
}

func (m *Main) translator() (wdk.Translator, func() error, error) {
	nop := func() error { return nil }
	switch m.Store {
	case "", "memory":
		return wdk.NewMapTranslator(), nop, nil
	case "leveldb":
		dir := m.StorePath
		if dir == "" {
			dir = filepath.Join(os.TempDir(), "wdk-cooc-leveldb")
		}
		lt, err := leveldb.NewTranslator(dir)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening leveldb translator")
		}
		return lt, lt.Close, nil
	case "bolt":
		file := m.StorePath
		if file == "" {
			file = filepath.Join(os.TempDir(), "wdk-cooc.bolt")
		}
		bt, err := boltdb.NewTranslator(file)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening bolt translator")
		}
		return bt, bt.Close, nil
	}
	return nil, nil, errors.Errorf("unknown store '%s'", m.Store)
}

// Run reads the pairs at Path and writes the groups found to Out.
func (m *Main) Run() (err error) {
	if m.Path == "" {
		return errors.New("no input path given")
	}
	if m.Threshold < 0 || m.Threshold > 1 {
		return errors.Errorf("threshold %v is not in [0, 1]", m.Threshold)
	}
	trans, closeTrans, err := m.translator()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeTrans(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing translator")
		}
	}()

	f, err := m.Fs.Open(m.Path)
	if err != nil {
		return errors.Wrap(err, "opening input")
	}
	defer f.Close()
	agg := NewAggregator(trans, OptExclude(m.Exclude...), OptLogger(m.Log))
	if err := agg.Read(f); err != nil {
		return errors.Wrapf(err, "reading %s", m.Path)
	}
	m.Log.Printf("read %d pairs, %d transactions, skipped %d lines", agg.Pairs(), agg.Transactions(), agg.Skipped())
	n, err := agg.WriteGroups(m.Out, m.Threshold, m.MinSize)
	if err != nil {
		return errors.Wrap(err, "writing groups")
	}
	m.Log.Printf("wrote %d groups", n)
	return nil
}
