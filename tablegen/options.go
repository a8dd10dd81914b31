// Package tablegen holds the aggregation sinks: wdk.Handlers which resolve
// entities as their trigger statements leave a Reader's head window, and
// fold them into statistics or table rows.
package tablegen

import "github.com/webdata/wdk"

// Option is a functional option for the sinks in this package. Options
// which do not apply to a sink are ignored by it.
type Option func(s *settings)

type settings struct {
	conf        wdk.Config
	log         wdk.Logger
	class       string
	topK        int
	domainLimit int
}

func newSettings(opts []Option) settings {
	s := settings{
		conf:  wdk.DefaultConfig(),
		log:   wdk.NopLogger{},
		class: wdk.SchemaProduct,
		topK:  1000,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// OptConfig sets the configuration whose namespace filter decides which
// predicates are counted.
func OptConfig(c wdk.Config) Option {
	return func(s *settings) {
		s.conf = c
	}
}

// OptLogger sets the logger.
func OptLogger(l wdk.Logger) Option {
	return func(s *settings) {
		s.log = l
	}
}

// OptClass sets the rdf:type which triggers EntityStats.
func OptClass(class string) Option {
	return func(s *settings) {
		s.class = class
	}
}

// OptTopK sets how many classes and properties a StatsGenerator ranks.
func OptTopK(limit int) Option {
	return func(s *settings) {
		s.topK = limit
	}
}

// OptCooc makes a StatsGenerator record property co-occurrences, keeping
// about domainLimit domains per property pair.
func OptCooc(domainLimit int) Option {
	return func(s *settings) {
		s.domainLimit = domainLimit
	}
}
