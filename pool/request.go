// Package pool runs document conversions across a bounded set of worker
// goroutines. Each request is parsed independently; workers share nothing
// but the handler.
package pool

import (
	"context"
	"errors"
	"sync"

	"github.com/tsawler/wordml/docx"
	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/render"
)

var (
	// ErrTimeout is returned by a future whose request ran past its timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrClosed is returned when submitting to a closed dispatcher.
	ErrClosed = errors.New("dispatcher closed")
	// ErrDuplicateID is returned when a request id is already in flight.
	ErrDuplicateID = errors.New("request id already in flight")
)

// Kind is the operation a request asks for.
type Kind int

const (
	// KindParse builds the document model only.
	KindParse Kind = iota
	// KindConvert builds the model and renders it.
	KindConvert
)

func (k Kind) String() string {
	if k == KindConvert {
		return "convert"
	}
	return "parse"
}

// Options control rendering for KindConvert requests.
type Options struct {
	Format       render.Format
	ShowHidden   bool
	NoLabels     bool
	Fragment     bool
	InlineStyles bool
}

// Request is a unit of work. Payload holds the raw .docx bytes. A zero ID
// asks the dispatcher to assign one.
type Request struct {
	ID      uint64
	Name    string // used in logs
	Kind    Kind
	Payload []byte
	Options Options
}

// ResponseKind tags a response.
type ResponseKind int

const (
	ResponseProgress ResponseKind = iota
	ResponseComplete
	ResponseError
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseComplete:
		return "complete"
	case ResponseError:
		return "error"
	default:
		return "progress"
	}
}

// Result is the payload of a completed request.
type Result struct {
	Document *model.Document
	Warnings []docx.Warning
	Output   []byte // rendered output, KindConvert only
}

// Response is a message about a request. Stage is set on progress
// responses, Result on completion and Err on failure.
type Response struct {
	ID     uint64
	Kind   ResponseKind
	Stage  string
	Result *Result
	Err    error
}

// Handler performs a request. It reports progress through the callback and
// should return promptly once ctx is done.
type Handler func(ctx context.Context, req Request, progress func(stage string)) (*Result, error)

// Dispatcher accepts requests and resolves their futures.
type Dispatcher interface {
	Submit(ctx context.Context, req Request) (*Future, error)
	Close() error
}

// progressBuffer is the number of progress responses held for a slow
// reader before further ones are dropped.
const progressBuffer = 16

// Future is the pending outcome of a request.
type Future struct {
	id       uint64
	progress chan Response
	done     chan struct{}

	mu       sync.Mutex
	resolved bool
	resp     Response
}

func newFuture(id uint64) *Future {
	return &Future{
		id:       id,
		progress: make(chan Response, progressBuffer),
		done:     make(chan struct{}),
	}
}

// ID returns the request id.
func (f *Future) ID() uint64 { return f.id }

// Progress delivers progress responses. It is closed when the future
// resolves. Progress is dropped when the buffer is full.
func (f *Future) Progress() <-chan Response { return f.progress }

// Done is closed when the future resolves.
func (f *Future) Done() <-chan struct{} { return f.done }

// Response returns the final response. It blocks until the future resolves.
func (f *Future) Response() Response {
	<-f.done
	return f.resp
}

// Wait blocks until the future resolves or ctx is done.
func (f *Future) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-f.done:
		return f.resp.Result, f.resp.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) report(stage string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return
	}
	select {
	case f.progress <- Response{ID: f.id, Kind: ResponseProgress, Stage: stage}:
	default:
	}
}

// resolve settles the future. Only the first call has any effect; it
// reports whether this call was the one.
func (f *Future) resolve(res *Result, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolved {
		return false
	}
	f.resolved = true
	if err != nil {
		f.resp = Response{ID: f.id, Kind: ResponseError, Err: err}
	} else {
		f.resp = Response{ID: f.id, Kind: ResponseComplete, Result: res}
	}
	close(f.progress)
	close(f.done)
	return true
}
