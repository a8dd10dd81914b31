package wdk

import (
	"io"

	"github.com/eapache/queue"
	"github.com/pkg/errors"
)

const (
	// DepthLimit is the deepest level of nested blank nodes merged into an
	// entity. The root is resolved at depth 0.
	DepthLimit = 3

	// MinCapacity is the smallest statement window a Reader accepts.
	MinCapacity = 10
)

// ErrCapacity is returned by NewReader for windows smaller than MinCapacity.
var ErrCapacity = errors.New("reader capacity too small")

// Resolver resolves the entity for a subject key from whatever statements
// are currently indexed.
type Resolver interface {
	ResolveEntity(key string, depth int) Entity
}

// Handler is called by a Reader for every statement leaving its head window.
// Handlers decide locally whether the statement should trigger resolution.
type Handler interface {
	Handle(r Resolver, s Statement)
}

// HandlerFunc is a function implementing Handler.
type HandlerFunc func(r Resolver, s Statement)

// Handle implements Handler.
func (h HandlerFunc) Handle(r Resolver, s Statement) {
	h(r, s)
}

// ReaderOption is a functional option for NewReader.
type ReaderOption func(r *Reader)

// OptReaderStatter sets the Statter the reader counts into.
func OptReaderStatter(s Statter) ReaderOption {
	return func(r *Reader) {
		r.stats = s
	}
}

// OptReaderLogger sets the reader's logger.
func OptReaderLogger(l Logger) ReaderOption {
	return func(r *Reader) {
		r.log = l
	}
}

type entry struct {
	stmt Statement
}

// Reader assembles entities out of a statement stream which is not grouped
// by subject. It keeps at most capacity statements in memory. Every
// statement enters a head window of capacity/2 statements, and when it
// leaves the head it is passed to the Handler, which typically resolves the
// subject's entity out of the index. Statements older than capacity are
// dropped whether or not they were resolved.
//
// A subject is handled again each time one of its statements leaves the
// head, so handlers see the same subject several times while it still has
// indexed statements. Later resolutions only see statements added after the
// previous one.
//
// Reader is not safe for concurrent use. Run one Reader per stream.
type Reader struct {
	capacity int
	headCap  int

	// buf and head hold *entry, oldest first.
	buf  *queue.Queue
	head *queue.Queue

	index   map[string][]*entry
	indexed int

	entitiesRead int64

	handler Handler
	stats   Statter
	log     Logger
}

// NewReader returns a Reader which keeps at most capacity statements and
// passes statements leaving its head window to h.
func NewReader(capacity int, h Handler, opts ...ReaderOption) (*Reader, error) {
	if capacity < MinCapacity {
		return nil, errors.Wrapf(ErrCapacity, "capacity %d is less than %d", capacity, MinCapacity)
	}
	if h == nil {
		return nil, errors.New("nil handler")
	}
	r := &Reader{
		capacity: capacity,
		headCap:  capacity / 2,
		buf:      queue.New(),
		head:     queue.New(),
		index:    make(map[string][]*entry),
		handler:  h,
		stats:    NopStatter{},
		log:      NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Add admits s to the window, handling statements leaving the head and
// dropping statements beyond the reader's capacity.
func (r *Reader) Add(s Statement) {
	e := &entry{stmt: s}
	r.buf.Add(e)
	r.head.Add(e)
	key := s.SubjectKey()
	r.index[key] = append(r.index[key], e)
	r.indexed++
	r.stats.Count("reader.statements", 1, 1.0)

	for r.head.Length() > r.headCap {
		old := r.head.Peek().(*entry)
		r.head.Remove()
		r.stats.Count("reader.evicted", 1, 1.0)
		r.handler.Handle(r, old.stmt)
	}

	for r.buf.Length() > r.capacity {
		old := r.buf.Peek().(*entry)
		r.buf.Remove()
		r.drop(old)
	}
}

// drop removes e from the index if it is still there. Entries for a subject
// are indexed in insertion order, so an entry leaving the buffer is either
// the first of its subject's list or was already consumed by a resolution.
func (r *Reader) drop(e *entry) {
	key := e.stmt.SubjectKey()
	entries, ok := r.index[key]
	if !ok || entries[0] != e {
		return
	}
	r.stats.Count("reader.dropped", 1, 1.0)
	r.log.Debugf("dropping unresolved statement %v", e.stmt)
	r.indexed--
	if len(entries) == 1 {
		delete(r.index, key)
		return
	}
	entries[0] = nil
	r.index[key] = entries[1:]
}

// Finish passes every statement still in the head window to the handler,
// oldest first. Calling Finish again does nothing unless more statements
// were added in between.
func (r *Reader) Finish() {
	for r.head.Length() > 0 {
		old := r.head.Peek().(*entry)
		r.head.Remove()
		r.handler.Handle(r, old.stmt)
	}
}

// Consume adds every statement from src and then calls Finish. It returns
// nil once src is exhausted.
func (r *Reader) Consume(src StatementSource) error {
	for {
		s, err := src.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrap(err, "reading statement")
		}
		r.Add(s)
	}
	r.Finish()
	return nil
}

// consume removes and returns every indexed statement for key.
func (r *Reader) consume(key string) ([]*entry, bool) {
	entries, ok := r.index[key]
	if !ok {
		return nil, false
	}
	delete(r.index, key)
	r.indexed -= len(entries)
	r.entitiesRead++
	r.stats.Count("reader.entities", 1, 1.0)
	return entries, true
}

// ResolveEntity consumes every statement indexed under key and flattens
// them into an Entity. Blank node objects which have indexed statements of
// their own are merged into the entity, down to DepthLimit levels below the
// root. A later value for the same predicate overwrites an earlier one, in
// statement order, with nested values written at the point the blank node is
// referenced.
//
// The returned entity has no properties if key has nothing indexed or depth
// exceeds DepthLimit. Nothing is consumed in that case.
func (r *Reader) ResolveEntity(key string, depth int) Entity {
	e := Entity{Subject: key}
	if depth > DepthLimit {
		return e
	}
	entries, ok := r.consume(key)
	if !ok {
		return e
	}
	e.Context = entries[0].stmt.Graph
	e.Properties = make(map[string]string)

	type frame struct {
		key     string
		entries []*entry
		depth   int
	}
	stack := []frame{{key: key, entries: entries, depth: depth}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if len(f.entries) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		s := f.entries[0].stmt
		f.entries = f.entries[1:]

		if !s.Object.IsBlank() {
			e.Properties[s.Predicate] = s.Object.Value
			continue
		}
		child := s.Object.Key()
		if child == f.key || f.depth+1 > DepthLimit {
			continue
		}
		if childEntries, ok := r.consume(child); ok {
			stack = append(stack, frame{key: child, entries: childEntries, depth: f.depth + 1})
		}
	}
	return e
}

// HasEntry reports whether key has indexed statements.
func (r *Reader) HasEntry(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Len returns the number of statements in the window.
func (r *Reader) Len() int { return r.buf.Length() }

// HeadLen returns the number of statements in the head window.
func (r *Reader) HeadLen() int { return r.head.Length() }

// Indexed returns the number of statements which are indexed and not yet
// consumed by a resolution.
func (r *Reader) Indexed() int { return r.indexed }

// Capacity returns the reader's window size.
func (r *Reader) Capacity() int { return r.capacity }

// EntitiesRead returns the number of resolutions, nested blank nodes
// included, which consumed at least one statement.
func (r *Reader) EntitiesRead() int64 { return r.entitiesRead }
