// Package pagestat writes the JSON report of an extraction run's page and
// data statistics files.
package pagestat

import (
	"encoding/json"
	"io"
	"os"

	"github.com/flowbase/flowbase"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/file"
	"github.com/webdata/wdk/pagestat"
)

// Main holds the options for a page statistics report.
type Main struct {
	PageStats  string `help:"Tab separated page statistics file, gzipped if it ends in .gz."`
	DataStats  string `help:"Comma separated data statistics file, gzipped if it ends in .gz. Optional."`
	Capacity   int    `help:"Number of domains aggregated at once."`
	Extraction string `help:"YAML extraction config naming the format columns. Empty uses the built in defaults."`
	Output     string `help:"File the report is written to. Empty means stdout."`
	Verbose    bool   `help:"Enable verbose logging."`

	Fs  afero.Fs  `flag:"-"`
	Out io.Writer `flag:"-"`

	log wdk.Logger
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Capacity: pagestat.DomainCapacity,
		Fs:       afero.NewOsFs(),
		Out:      os.Stdout,
		log:      wdk.NopLogger{},
	}
}

// Report is the combined report.
type Report struct {
	Data  *pagestat.DataReport `json:"data,omitempty"`
	Pages *pagestat.PageReport `json:"pages"`
}

func (m *Main) open(path string) (wdk.NamedReadCloser, error) {
	src, err := file.NewRawSource(path, file.OptRawFs(m.Fs))
	if err != nil {
		return nil, err
	}
	return src.NextReader()
}

// Run reads the statistics files and writes the report.
func (m *Main) Run() error {
	if m.PageStats == "" {
		return errors.New("no page statistics file given")
	}
	if m.Verbose {
		flowbase.InitLogDebug()
	} else {
		flowbase.InitLogInfo()
	}
	m.log = wdk.FlowLogger{}

	conf := wdk.DefaultConfig()
	if m.Extraction != "" {
		var err error
		if conf, err = wdk.LoadConfig(m.Fs, m.Extraction); err != nil {
			return errors.Wrap(err, "loading config")
		}
	}

	report := Report{}
	if m.DataStats != "" {
		rc, err := m.open(m.DataStats)
		if err != nil {
			return errors.Wrap(err, "opening data statistics")
		}
		report.Data, err = pagestat.ReadDataStats(rc, pagestat.OptLogger(m.log))
		rc.Close()
		if err != nil {
			return errors.Wrap(err, "reading data statistics")
		}
	}

	rc, err := m.open(m.PageStats)
	if err != nil {
		return errors.Wrap(err, "opening page statistics")
	}
	defer rc.Close()
	report.Pages, err = pagestat.ReadPageStats(rc, conf, m.Capacity, pagestat.OptLogger(m.log))
	if err != nil {
		return errors.Wrap(err, "reading page statistics")
	}
	m.log.Printf("read %d pages, %d errors", report.Pages.Lines, report.Pages.Errors)

	w := m.Out
	if m.Output != "" {
		f, err := m.Fs.Create(m.Output)
		if err != nil {
			return errors.Wrap(err, "creating output")
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(report), "encoding report")
}
