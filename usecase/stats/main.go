// Package stats computes corpus statistics over N-Quads: the most used
// classes and properties, link counts and, optionally, groups of properties
// which are used together.
package stats

import (
	"github.com/pkg/errors"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/tablegen"
	"github.com/webdata/wdk/usecase/input"
)

// Main holds the options for a stats run.
type Main struct {
	input.Input `flag:"!embed"`

	TopK        int     `help:"Number of classes and properties kept in the report."`
	Cooc        bool    `help:"Count property co-occurrences and report frequent property groups."`
	DomainLimit int     `help:"Number of domains kept per property pair."`
	Threshold   float64 `help:"Minimum share of entities a property group must be used by."`
	MinSize     int     `help:"Minimum number of properties in a group."`

	total *tablegen.StatsGenerator
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Input:       input.NewInput(),
		TopK:        1000,
		DomainLimit: 100,
		Threshold:   0.01,
		MinSize:     2,
	}
}

// Group is a set of properties used together by Support entities.
type Group struct {
	Properties []string  `json:"properties"`
	Support    int64     `json:"support"`
	Domains    *wdk.TopK `json:"domains"`
}

// Report is the output of a stats run.
type Report struct {
	tablegen.StatsReport
	Groups []Group `json:"groups,omitempty"`
}

func (m *Main) options() []tablegen.Option {
	opts := []tablegen.Option{
		tablegen.OptConfig(m.Conf()),
		tablegen.OptLogger(m.Log()),
		tablegen.OptTopK(m.TopK),
	}
	if m.Cooc {
		opts = append(opts, tablegen.OptCooc(m.DomainLimit))
	}
	return opts
}

func (m *Main) validate() error {
	if m.TopK < 0 {
		return errors.Errorf("topk must not be negative, got %d", m.TopK)
	}
	if m.Cooc && m.DomainLimit < 0 {
		return errors.Errorf("domain-limit must not be negative, got %d", m.DomainLimit)
	}
	return nil
}

// Run reads every input and writes the report.
func (m *Main) Run() (err error) {
	if err := m.validate(); err != nil {
		return errors.Wrap(err, "validating configuration")
	}
	if err := m.Setup(); err != nil {
		return errors.Wrap(err, "setting up")
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	m.total = tablegen.NewStatsGenerator(m.options()...)
	err = m.Ingest(
		func(name string) (wdk.Handler, error) {
			return tablegen.NewStatsGenerator(m.options()...), nil
		},
		func(name string, h wdk.Handler) error {
			g, ok := h.(*tablegen.StatsGenerator)
			if !ok {
				return errors.Errorf("unexpected handler %T", h)
			}
			m.total.Merge(g)
			return nil
		})
	if err != nil {
		return err
	}

	report := Report{StatsReport: m.total.Report()}
	for _, s := range m.total.Itemsets(m.Threshold, m.MinSize) {
		report.Groups = append(report.Groups, Group{
			Properties: s.Items,
			Support:    s.Support(),
			Domains:    s.Entry.Domains,
		})
	}
	m.Log().Printf("counted %d entities", report.Entities)
	return m.WriteJSON(report)
}
