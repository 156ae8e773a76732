package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gammazero/deque"

	"github.com/mailbox-go/mailbox-go/pkg/mailbox"
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("queue closed")

// Option configures a Serial queue.
type Option func(*Serial)

// WithLogger sets the logger used to report recovered panics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Serial) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Serial is an unbounded FIFO queue drained by one worker goroutine.
type Serial struct {
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	pending deque.Deque[func()]
	closed  bool

	wake chan struct{}
	done chan struct{}

	executed atomic.Uint64
	panics   atomic.Uint64
}

// NewSerial creates a Serial queue and starts its worker.
func NewSerial(name string, opts ...Option) *Serial {
	s := &Serial{
		name:   name,
		logger: slog.New(slog.DiscardHandler),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("queue", name)

	go s.run()
	return s
}

// Name returns the queue name.
func (s *Serial) Name() string {
	return s.name
}

// Submit appends work to the queue. It never blocks. Work submitted after
// Close is discarded.
func (s *Serial) Submit(work func()) {
	if work == nil {
		return
	}
	s.submit(work)
}

func (s *Serial) submit(work func()) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("work discarded after close")
		return false
	}
	s.pending.PushBack(work)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Flush waits until all work submitted before the call has run.
// It must not be called from a work unit of the same queue.
func (s *Serial) Flush(ctx context.Context) error {
	reached := make(chan struct{})
	if !s.submit(func() { close(reached) }) {
		return ErrClosed
	}
	select {
	case <-reached:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of work units waiting to run.
func (s *Serial) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

// Executed returns the number of work units that have run, including those
// that panicked.
func (s *Serial) Executed() uint64 {
	return s.executed.Load()
}

// Panics returns the number of work units that panicked.
func (s *Serial) Panics() uint64 {
	return s.panics.Load()
}

// Close stops accepting work, runs what is already queued and waits for the
// worker to exit. It is safe to call Close multiple times, but not from a
// work unit of the same queue.
func (s *Serial) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	<-s.done
}

func (s *Serial) run() {
	defer close(s.done)

	for {
		work, closed := s.next()
		if work != nil {
			s.execute(work)
			continue
		}
		if closed {
			return
		}
		<-s.wake
	}
}

// next pops the oldest work unit, or returns nil when none is waiting.
func (s *Serial) next() (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending.Len() == 0 {
		return nil, s.closed
	}
	return s.pending.PopFront(), s.closed
}

func (s *Serial) execute(work func()) {
	defer func() {
		s.executed.Add(1)
		if r := recover(); r != nil {
			s.panics.Add(1)
			s.logger.Warn("work panicked", slog.Any("panic", r))
		}
	}()
	work()
}

// Compile-time interface satisfaction check.
var _ mailbox.DeliveryQueue = (*Serial)(nil)
