// Package table writes one CSV table per input file, with a row per entity
// matching a table format such as hcard.
package table

import (
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/tablegen"
	"github.com/webdata/wdk/usecase/input"
)

// Main holds the options for generating tables.
type Main struct {
	input.Input `flag:"!embed"`

	Format string `help:"Table format to generate. Only hcard is known."`
	OutDir string `help:"Directory the tables are written to, one CSV file per input file."`

	mu     sync.Mutex
	files  map[*tablegen.TableGenerator]io.Closer
	Tables map[string]int64 `flag:"-"`
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Input:  input.NewInput(),
		Format: "hcard",
		OutDir: ".",
	}
}

func tableName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, ".gz")
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".csv"
}

// Run writes a table for every input and a summary of the rows written.
func (m *Main) Run() (err error) {
	spec, ok := tablegen.Tables[m.Format]
	if !ok {
		known := make([]string, 0, len(tablegen.Tables))
		for k := range tablegen.Tables {
			known = append(known, k)
		}
		sort.Strings(known)
		return errors.Errorf("unknown table format '%s', known: %s", m.Format, strings.Join(known, ", "))
	}
	if err := m.Setup(); err != nil {
		return errors.Wrap(err, "setting up")
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := m.Fs.MkdirAll(m.OutDir, 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	m.files = make(map[*tablegen.TableGenerator]io.Closer)
	m.Tables = make(map[string]int64)
	err = m.Ingest(
		func(name string) (wdk.Handler, error) {
			f, err := m.Create(path.Join(m.OutDir, tableName(name)))
			if err != nil {
				return nil, err
			}
			g, err := tablegen.NewTableGenerator(spec, f, tablegen.OptLogger(m.Log()))
			if err != nil {
				f.Close()
				return nil, errors.Wrap(err, "getting table generator")
			}
			m.mu.Lock()
			m.files[g] = f
			m.mu.Unlock()
			return g, nil
		},
		func(name string, h wdk.Handler) error {
			g, ok := h.(*tablegen.TableGenerator)
			if !ok {
				return errors.Errorf("unexpected handler %T", h)
			}
			m.mu.Lock()
			f := m.files[g]
			delete(m.files, g)
			m.mu.Unlock()
			ferr := g.Flush()
			cerr := f.Close()
			if ferr != nil {
				return errors.Wrapf(ferr, "writing table for %s", name)
			}
			if cerr != nil {
				return errors.Wrapf(cerr, "closing table for %s", name)
			}
			m.Tables[tableName(name)] = g.Rows()
			m.Log().Printf("wrote %d rows for %s", g.Rows(), name)
			return nil
		})
	for _, f := range m.files {
		f.Close()
	}
	if err != nil {
		return err
	}
	return m.WriteJSON(m.Tables)
}
