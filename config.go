package wdk

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config is the extraction configuration shared by sinks and statistics
// readers. Formats names the extractor outputs which appear as columns in
// page statistics. Predicates under one of EvilNamespaces are ignored unless
// they also fall under one of AllowedSubNamespaces.
type Config struct {
	Formats              []string `yaml:"formats"`
	EvilNamespaces       []string `yaml:"evil-namespaces"`
	AllowedSubNamespaces []string `yaml:"allowed-sub-namespaces"`
}

// DefaultConfig returns the configuration of the standard extraction run.
func DefaultConfig() Config {
	return Config{
		Formats: []string{
			"html-rdfa", "html-rdfa11", "html-microdata",
			"html-mf-geo", "html-mf-hcalendar", "html-mf-hcard", "html-mf-adr",
			"html-mf2-h-adr", "html-mf-hlisting", "html-mf-hresume",
			"html-mf-hreview", "html-mf-species", "html-mf-hrecipe", "html-mf-xfn",
			"rdf-jsonld", "html-embedded-jsonld",
		},
		EvilNamespaces: []string{
			"http://www.w3.org/1999/xhtml/vocab#",
			"http://vocab.sindice.net/",
		},
		AllowedSubNamespaces: []string{
			"http://sindice.com/hrecipe/",
		},
	}
}

// LoadConfig reads a YAML config file from fs. Keys missing from the file
// keep their DefaultConfig values.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	conf := DefaultConfig()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return conf, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, errors.Wrapf(err, "decoding config %s", path)
	}
	return conf, nil
}

// Filter returns the namespace filter described by c.
func (c Config) Filter() NamespaceFilter {
	return NamespaceFilter{
		evil:    c.EvilNamespaces,
		allowed: c.AllowedSubNamespaces,
	}
}

// NamespaceFilter decides which predicates are kept.
type NamespaceFilter struct {
	evil    []string
	allowed []string
}

// Allow reports whether predicate should be kept.
func (f NamespaceFilter) Allow(predicate string) bool {
	for _, ns := range f.evil {
		if !strings.HasPrefix(predicate, ns) {
			continue
		}
		for _, sub := range f.allowed {
			if strings.HasPrefix(predicate, sub) {
				return true
			}
		}
		return false
	}
	return true
}
