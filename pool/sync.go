package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sync runs each request in the submitting goroutine. Submit returns an
// already resolved future. The timeout reaches the handler through its
// context only, so a handler that ignores ctx blocks the caller until it
// returns.
type Sync struct {
	handler Handler
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool
	ids    idAllocator
}

// NewSync returns a dispatcher without worker goroutines.
func NewSync(handler Handler, timeout time.Duration, logger *zap.Logger) *Sync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sync{
		handler: handler,
		timeout: timeout,
		logger:  logger.Named("sync"),
		ids:     newIDAllocator(),
	}
}

// Submit runs req to completion.
func (s *Sync) Submit(ctx context.Context, req Request) (*Future, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.handler == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: nil handler", ErrInvalidConfig)
	}
	fut, auto, err := s.ids.acquire(&req)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %d", err, req.ID)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, err := invoke(ctx, s.handler, req, fut)
	if errors.Is(err, ErrTimeout) {
		s.logger.Warn("request timed out",
			zap.Uint64("id", req.ID),
			zap.String("name", req.Name),
			zap.Duration("timeout", s.timeout))
	}
	fut.resolve(res, err)

	s.mu.Lock()
	s.ids.release(req.ID, auto)
	s.mu.Unlock()
	return fut, nil
}

// Close stops accepting requests.
func (s *Sync) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
