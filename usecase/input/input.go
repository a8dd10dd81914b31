// Package input holds the options shared by the commands which read N-Quads:
// where statements come from, how many readers run at once, logging,
// configuration and where the report goes.
package input

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"time"

	"github.com/flowbase/flowbase"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/aws/s3"
	"github.com/webdata/wdk/file"
	"github.com/webdata/wdk/kafka"
	"github.com/webdata/wdk/nquads"
	"github.com/webdata/wdk/termstat"
)

// Input is meant to be embedded in a command's Main with `flag:"!embed"`.
type Input struct {
	Path        string   `help:"File or directory of N-Quads files, gzipped if they end in .gz."`
	Pattern     string   `help:"Only read the files in Path whose name matches this glob."`
	Bucket      string   `help:"S3 bucket to read objects from instead of Path."`
	Prefix      string   `help:"Only S3 objects whose key has this prefix are read."`
	Region      string   `help:"AWS region of the bucket."`
	KafkaHosts  []string `help:"Kafka hosts to consume N-Quads from instead of files."`
	Topics      []string `help:"Kafka topics to consume."`
	Group       string   `help:"Kafka consumer group."`
	MaxMsgs     int      `help:"Number of Kafka messages to consume before stopping. 0 means no limit."`
	Concurrency int      `help:"Number of files read at once."`
	Capacity    int      `help:"Number of statements each reader buffers."`
	Extraction  string   `help:"YAML extraction config. Empty uses the built in defaults."`
	Output      string   `help:"File the report is written to. Empty means stdout."`
	LogPath     string   `help:"Log file to write to. Empty logs to the terminal."`
	Verbose     bool     `help:"Enable verbose logging."`
	TermStats   bool     `help:"Print running counters to stderr."`

	Fs     afero.Fs      `flag:"-"`
	Out    io.Writer     `flag:"-"`
	Source wdk.RawSource `flag:"-"`

	log     wdk.Logger
	stats   wdk.Statter
	conf    wdk.Config
	closers []io.Closer
}

// NewInput returns an Input with default settings.
func NewInput() Input {
	return Input{
		Region:      "us-east-1",
		Topics:      []string{"nquads"},
		Group:       "wdk",
		Concurrency: 1,
		Capacity:    100000,
		Fs:          afero.NewOsFs(),
		Out:         os.Stdout,
	}
}

// Setup validates the options and prepares logging, stats and config. It
// must be called before any other method.
func (in *Input) Setup() error {
	if err := in.validate(); err != nil {
		return errors.Wrap(err, "validating configuration")
	}
	if in.Fs == nil {
		in.Fs = afero.NewOsFs()
	}

	if in.LogPath != "" {
		f, err := os.OpenFile(in.LogPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return errors.Wrap(err, "opening log file")
		}
		in.closers = append(in.closers, f)
		if in.Verbose {
			in.log = wdk.VerboseLogger{Logger: log.New(f, "", log.LstdFlags)}
		} else {
			in.log = wdk.StdLogger{Logger: log.New(f, "", log.LstdFlags)}
		}
	} else {
		if in.Verbose {
			flowbase.InitLogDebug()
		} else {
			flowbase.InitLogInfo()
		}
		in.log = wdk.FlowLogger{}
	}

	in.stats = wdk.NopStatter{}
	if in.TermStats {
		c := termstat.NewCollector(os.Stderr, 2*time.Second)
		in.closers = append(in.closers, c)
		in.stats = c
	}

	in.conf = wdk.DefaultConfig()
	if in.Extraction != "" {
		conf, err := wdk.LoadConfig(in.Fs, in.Extraction)
		if err != nil {
			return errors.Wrap(err, "loading config")
		}
		in.conf = conf
	}
	return nil
}

func (in *Input) validate() error {
	sources := 0
	if in.Source != nil {
		sources++
	}
	if in.Path != "" {
		sources++
	}
	if in.Bucket != "" {
		sources++
	}
	if len(in.KafkaHosts) > 0 {
		sources++
	}
	if sources != 1 {
		return errors.New("exactly one of path, bucket or kafka-hosts must be given")
	}
	if len(in.KafkaHosts) > 0 {
		if len(in.Topics) == 0 {
			return errors.New("kafka-hosts needs at least one topic")
		}
		for _, t := range in.Topics {
			if t == "" {
				return errors.New("kafka topics must not be empty")
			}
		}
	}
	if in.Concurrency < 1 {
		return errors.Errorf("concurrency must be at least 1, got %d", in.Concurrency)
	}
	if in.Capacity < wdk.MinCapacity {
		return errors.Errorf("capacity must be at least %d, got %d", wdk.MinCapacity, in.Capacity)
	}
	return nil
}

// Log returns the logger set up by Setup.
func (in *Input) Log() wdk.Logger { return in.log }

// Stats returns the stats collector set up by Setup.
func (in *Input) Stats() wdk.Statter { return in.stats }

// Conf returns the extraction config loaded by Setup.
func (in *Input) Conf() wdk.Config { return in.conf }

func (in *Input) rawSource() (wdk.RawSource, error) {
	switch {
	case in.Source != nil:
		return in.Source, nil
	case in.Bucket != "":
		src, err := s3.NewRawSource(in.Region, in.Bucket, in.Prefix)
		return src, errors.Wrap(err, "getting s3 source")
	}
	src, err := file.NewRawSource(in.Path, file.OptRawFs(in.Fs), file.OptRawPattern(in.Pattern))
	return src, errors.Wrap(err, "getting file source")
}

// Ingest reads every input through its own Reader and handler. For files
// and S3 objects newHandler is called once per file; Kafka topics are read
// as a single stream named after the first topic. Each handler is passed
// to done once its input has been read.
func (in *Input) Ingest(newHandler func(name string) (wdk.Handler, error), done func(name string, h wdk.Handler) error) error {
	if len(in.KafkaHosts) > 0 {
		return in.ingestKafka(newHandler, done)
	}
	src, err := in.rawSource()
	if err != nil {
		return err
	}
	dec := nquads.NewDecoderFunc(nquads.OptDecoderLogger(in.log), nquads.OptDecoderStatter(in.stats))
	ing := wdk.NewIngester(src, dec)
	ing.Concurrency = in.Concurrency
	ing.Capacity = in.Capacity
	ing.Stats = in.stats
	ing.Log = in.log
	ing.NewHandler = newHandler
	ing.Done = done
	return errors.Wrap(ing.Run(), "ingesting")
}

func (in *Input) ingestKafka(newHandler func(name string) (wdk.Handler, error), done func(name string, h wdk.Handler) error) error {
	src := kafka.NewSource()
	src.Hosts = in.KafkaHosts
	src.Topics = in.Topics
	src.Group = in.Group
	src.MaxMsgs = in.MaxMsgs
	src.Stats = in.stats
	src.Log = in.log
	if err := src.Open(); err != nil {
		return errors.Wrap(err, "opening kafka source")
	}
	defer src.Close()

	name := in.Topics[0]
	h, err := newHandler(name)
	if err != nil {
		return errors.Wrap(err, "getting handler")
	}
	r, err := wdk.NewReader(in.Capacity, h, wdk.OptReaderStatter(in.stats), wdk.OptReaderLogger(in.log))
	if err != nil {
		return errors.Wrap(err, "getting reader")
	}
	if err := r.Consume(src); err != nil {
		return errors.Wrap(err, "consuming kafka")
	}
	in.log.Printf("read %d entities from kafka, skipped %d lines", r.EntitiesRead(), src.Skipped())
	return errors.Wrap(done(name, h), "finishing")
}

// Create opens name for writing on the Input's filesystem.
func (in *Input) Create(name string) (io.WriteCloser, error) {
	f, err := in.Fs.Create(name)
	return f, errors.Wrapf(err, "creating %s", name)
}

// WriteJSON writes v as indented JSON to Output, or to Out if Output is
// empty.
func (in *Input) WriteJSON(v interface{}) error {
	w := in.Out
	if in.Output != "" {
		f, err := in.Create(in.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encoding report")
}

// Close releases the log file and stops the stats printer.
func (in *Input) Close() error {
	var errs wdk.Errors
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	in.closers = nil
	return errs.Err()
}
