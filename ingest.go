package wdk

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DecoderFunc turns an input file into a statement stream.
type DecoderFunc func(r io.Reader, name string) StatementSource

// Ingester runs every file of a RawSource through its own Reader and
// Handler. Files are processed Concurrency at a time. A Reader and its
// Handler are never shared between goroutines. Once a file has been read to
// the end, its Handler is passed to Done. Calls to Done are serialized, so
// Done can merge per-file results into shared state without locking.
type Ingester struct {
	Concurrency int
	Capacity    int
	Stats       Statter
	Log         Logger

	// NewHandler returns a fresh handler for the named file.
	NewHandler func(name string) (Handler, error)
	// Done receives each file's handler after the file has been read.
	Done func(name string, h Handler) error

	src    RawSource
	decode DecoderFunc
	mu     sync.Mutex
}

// NewIngester gets a new Ingester reading files from src with dec.
func NewIngester(src RawSource, dec DecoderFunc) *Ingester {
	return &Ingester{
		Concurrency: 1,
		Capacity:    100000,
		Stats:       NopStatter{},
		Log:         NopLogger{},
		src:         src,
		decode:      dec,
	}
}

// Run processes files until the source is exhausted. A file which cannot
// be read to the end is logged and its partial results are still passed to
// Done. Errors from NewHandler or Done stop the run.
func (n *Ingester) Run() error {
	if n.NewHandler == nil {
		return errors.New("ingester has no NewHandler")
	}
	if n.Concurrency < 1 {
		n.Concurrency = 1
	}
	eg, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n.Concurrency; i++ {
		eg.Go(func() error {
			for ctx.Err() == nil {
				rc, err := n.src.NextReader()
				if err == io.EOF {
					return nil
				} else if err != nil {
					return errors.Wrap(err, "getting next reader")
				}
				if err := n.runFile(rc); err != nil {
					return errors.Wrapf(err, "processing %s", rc.Name())
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

func (n *Ingester) runFile(rc NamedReadCloser) error {
	defer rc.Close()
	name := rc.Name()
	start := time.Now()

	h, err := n.NewHandler(name)
	if err != nil {
		return errors.Wrap(err, "getting handler")
	}
	r, err := NewReader(n.Capacity, h, OptReaderStatter(n.Stats), OptReaderLogger(n.Log))
	if err != nil {
		return errors.Wrap(err, "getting reader")
	}
	if err := r.Consume(n.decode(rc, name)); err != nil {
		n.Stats.Count("ingest.file_errors", 1, 1.0)
		n.Log.Printf("reading %s stopped early: %v", name, err)
		r.Finish()
	}
	n.Stats.Count("ingest.files", 1, 1.0)
	n.Stats.Timing("ingest.file", time.Since(start), 1.0)
	n.Log.Printf("read %s: %d entities in %v", name, r.EntitiesRead(), time.Since(start))

	if n.Done == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return errors.Wrap(n.Done(name, h), "finishing")
}
