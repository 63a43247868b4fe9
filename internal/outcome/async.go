package outcome

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tictac_arena/internal/domain"
)

var (
	ErrQueueFull = errors.New("outcome queue is full")
	ErrClosed    = errors.New("outcome sink is closed")
)

// Async hands outcomes to a background worker so callers holding locks never
// wait on I/O. Record never blocks; when the queue is full the outcome is
// dropped and ErrQueueFull returned.
type Async struct {
	next    Sink
	log     *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan domain.Outcome
	done   chan struct{}
}

func NewAsync(next Sink, size int, timeout time.Duration, log *slog.Logger) *Async {
	if size <= 0 {
		size = 256
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	a := &Async{
		next:    next,
		log:     log,
		timeout: timeout,
		queue:   make(chan domain.Outcome, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Record(_ context.Context, o domain.Outcome) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- o:
		return nil
	default:
		a.log.Warn("outcome dropped, queue full", "session", o.SessionID)
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for o := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Record(ctx, o); err != nil {
			a.log.Error("outcome sink failed", "session", o.SessionID, "error", err)
		}
		cancel()
	}
}

// Close stops accepting outcomes and waits for the queued ones to be
// delivered or for ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
