// Package entitystats reports how the entities of one class are described:
// how many properties they carry and which properties are used.
package entitystats

import (
	"github.com/pkg/errors"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/tablegen"
	"github.com/webdata/wdk/usecase/input"
)

// Main holds the options for an entity stats run.
type Main struct {
	input.Input `flag:"!embed"`

	Class string `help:"IRI of the class whose entities are described."`

	total *tablegen.EntityStats
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Input: input.NewInput(),
		Class: wdk.SchemaProduct,
	}
}

func (m *Main) newStats() *tablegen.EntityStats {
	return tablegen.NewEntityStats(
		tablegen.OptConfig(m.Conf()),
		tablegen.OptLogger(m.Log()),
		tablegen.OptClass(m.Class),
	)
}

// Run reads every input and writes the report.
func (m *Main) Run() (err error) {
	if m.Class == "" {
		return errors.New("no class given")
	}
	if err := m.Setup(); err != nil {
		return errors.Wrap(err, "setting up")
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	m.total = m.newStats()
	err = m.Ingest(
		func(name string) (wdk.Handler, error) {
			return m.newStats(), nil
		},
		func(name string, h wdk.Handler) error {
			s, ok := h.(*tablegen.EntityStats)
			if !ok {
				return errors.Errorf("unexpected handler %T", h)
			}
			m.total.Merge(s)
			return nil
		})
	if err != nil {
		return err
	}
	report := m.total.Report()
	m.Log().Printf("described %d entities of %s", report.Entities, report.Class)
	return m.WriteJSON(report)
}
