package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/wordml/config"
)

// ErrInvalidConfig is returned by New for unusable settings.
var ErrInvalidConfig = errors.New("invalid pool configuration")

type job struct {
	ctx  context.Context
	req  Request
	fut  *Future
	auto bool
}

// Pool is a bounded set of worker goroutines. Workers start on demand, up
// to the configured size, and exit after sitting idle for IdleTimeout.
type Pool struct {
	size        int
	timeout     time.Duration
	idleTimeout time.Duration
	handler     Handler
	logger      *zap.Logger

	jobs chan *job
	quit chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	running int
	idle    int
	pending int // submitters waiting to hand off a job
	ids     idAllocator
}

// New starts a pool sized by cfg.PoolSize. A nil logger discards logs.
func New(cfg config.Config, handler Handler, logger *zap.Logger) (*Pool, error) {
	switch {
	case handler == nil:
		return nil, fmt.Errorf("%w: nil handler", ErrInvalidConfig)
	case cfg.Workers < 0:
		return nil, fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, cfg.Workers)
	case cfg.MaxWorkers < 1:
		return nil, fmt.Errorf("%w: max workers %d", ErrInvalidConfig, cfg.MaxWorkers)
	case cfg.RequestTimeout <= 0:
		return nil, fmt.Errorf("%w: request timeout %s", ErrInvalidConfig, cfg.RequestTimeout)
	case cfg.IdleTimeout <= 0:
		return nil, fmt.Errorf("%w: idle timeout %s", ErrInvalidConfig, cfg.IdleTimeout)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pool{
		size:        cfg.PoolSize(),
		timeout:     cfg.RequestTimeout,
		idleTimeout: cfg.IdleTimeout,
		handler:     handler,
		logger:      logger.Named("pool"),
		jobs:        make(chan *job),
		quit:        make(chan struct{}),
		ids:         newIDAllocator(),
	}, nil
}

// NewDispatcher returns a Pool, or a Sync dispatcher when the pool cannot be
// created from cfg.
func NewDispatcher(cfg config.Config, handler Handler, logger *zap.Logger) Dispatcher {
	p, err := New(cfg, handler, logger)
	if err == nil {
		return p
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Warn("worker pool unavailable, running requests in the caller", zap.Error(err))
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultRequestTimeout
	}
	return NewSync(handler, timeout, logger)
}

// Size returns the maximum number of workers.
func (p *Pool) Size() int { return p.size }

// Running returns the number of live workers.
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// InFlight returns the number of requests whose ids are still held.
func (p *Pool) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ids.inflight)
}

// Submit queues req and returns its future. It blocks while every worker
// is busy, until ctx is done or the pool closes. The handler runs under ctx,
// so cancelling it after the hand-off cancels the request as well.
func (p *Pool) Submit(ctx context.Context, req Request) (*Future, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	fut, auto, err := p.ids.acquire(&req)
	if err != nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", err, req.ID)
	}
	if p.idle <= p.pending && p.running < p.size {
		p.running++
		p.wg.Add(1)
		go p.worker()
	}
	p.pending++
	p.mu.Unlock()

	j := &job{ctx: ctx, req: req, fut: fut, auto: auto}
	select {
	case p.jobs <- j:
		p.mu.Lock()
		p.pending--
		p.mu.Unlock()
		return fut, nil
	case <-ctx.Done():
		err = ctx.Err()
	case <-p.quit:
		err = ErrClosed
	}

	p.mu.Lock()
	p.pending--
	p.ids.release(req.ID, auto)
	p.mu.Unlock()
	fut.resolve(nil, err)
	return nil, err
}

func (p *Pool) worker() {
	defer p.wg.Done()

	timer := time.NewTimer(p.idleTimeout)
	defer timer.Stop()

	for {
		p.mu.Lock()
		p.idle++
		p.mu.Unlock()

		select {
		case j := <-p.jobs:
			p.mu.Lock()
			p.idle--
			p.mu.Unlock()
			p.run(j)
			resetTimer(timer, p.idleTimeout)

		case <-timer.C:
			p.mu.Lock()
			p.idle--
			if p.pending > 0 {
				p.mu.Unlock()
				timer.Reset(p.idleTimeout)
				continue
			}
			p.running--
			p.mu.Unlock()
			p.logger.Debug("idle worker exiting", zap.Duration("idle", p.idleTimeout))
			return

		case <-p.quit:
			p.mu.Lock()
			p.idle--
			p.running--
			p.mu.Unlock()
			return
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// run executes one job. On timeout the future is rejected and the worker
// moves on; the handler's late result is discarded.
func (p *Pool) run(j *job) {
	ctx, cancel := context.WithTimeout(j.ctx, p.timeout)
	defer cancel()

	res, err := execute(ctx, p.handler, j.req, j.fut)
	if errors.Is(err, ErrTimeout) {
		p.logger.Warn("request timed out",
			zap.Uint64("id", j.req.ID),
			zap.String("name", j.req.Name),
			zap.Duration("timeout", p.timeout))
	}
	j.fut.resolve(res, err)

	p.mu.Lock()
	p.ids.release(j.req.ID, j.auto)
	p.mu.Unlock()
}

// execute runs handler in its own goroutine so a handler that ignores ctx
// cannot hold the caller past the deadline.
func execute(ctx context.Context, handler Handler, req Request, fut *Future) (*Result, error) {
	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := invoke(ctx, handler, req, fut)
		done <- outcome{res, err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		return nil, contextError(ctx.Err())
	}
}

// invoke calls handler in the current goroutine, turning a panic into an
// error and a missed deadline into ErrTimeout.
func invoke(ctx context.Context, handler Handler, req Request, fut *Future) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("handler panic: %v", r)
		}
	}()
	res, err = handler(ctx, req, fut.report)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrTimeout
	}
	return res, err
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
