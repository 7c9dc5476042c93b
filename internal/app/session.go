package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/domain"
)

// AttemptRunner executes one request to completion, publishing its events
type AttemptRunner interface {
	Run(ctx context.Context, req domain.DownloadRequest) error
}

// SlotState is the state of the single attempt slot
type SlotState int

const (
	SlotIdle SlotState = iota
	SlotRunning
)

func (s SlotState) String() string {
	if s == SlotRunning {
		return "running"
	}
	return "idle"
}

// Batch is the result of one drain
type Batch struct {
	Events []domain.Event
	// Finished is the request whose done event is in Events, if any
	Finished *domain.DownloadRequest
}

// Session is the submission boundary: at most one attempt runs at a time
// and a second submission is rejected, never queued. The slot is freed only
// when a drain observes the attempt's done event.
type Session struct {
	ctx     context.Context
	runner  AttemptRunner
	channel *EventChannel
	logger  *zap.Logger

	mu      sync.Mutex
	state   SlotState
	current *domain.DownloadRequest
	workers sync.WaitGroup
}

// NewSession creates a session. Cancelling ctx cancels the running attempt.
func NewSession(ctx context.Context, runner AttemptRunner, channel *EventChannel, logger *zap.Logger) *Session {
	return &Session{
		ctx:     ctx,
		runner:  runner,
		channel: channel,
		logger:  logger,
	}
}

// Submit starts an attempt for req and returns true, or returns false
// without side effects when an attempt is already active.
func (s *Session) Submit(req domain.DownloadRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SlotRunning {
		s.logger.Debug("Submission rejected, attempt in progress", zap.String("url", req.URL))
		return false
	}
	s.state = SlotRunning
	s.current = &req

	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Attempt runner panicked", zap.String("url", req.URL), zap.Any("panic", r))
				s.channel.Publish(domain.NewDoneEvent(false, fmt.Sprintf("%v: %v", domain.ErrUnexpected, r)))
			}
		}()
		if err := s.runner.Run(s.ctx, req); err != nil {
			s.logger.Debug("Attempt ended with error", zap.String("url", req.URL), zap.Error(err))
		}
	}()

	return true
}

// Drain removes all pending events in publish order and frees the slot if
// the attempt's done event is among them.
func (s *Session) Drain() Batch {
	batch := Batch{Events: s.channel.DrainAll()}
	for _, ev := range batch.Events {
		if !ev.IsDone() {
			continue
		}
		s.mu.Lock()
		batch.Finished = s.current
		s.current = nil
		s.state = SlotIdle
		s.mu.Unlock()
	}
	return batch
}

// DrainAll is Drain without the finished request
func (s *Session) DrainAll() []domain.Event {
	return s.Drain().Events
}

// State returns the slot state
func (s *Session) State() SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether an attempt occupies the slot
func (s *Session) Busy() bool {
	return s.State() == SlotRunning
}

// Current returns the request occupying the slot
func (s *Session) Current() (domain.DownloadRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.DownloadRequest{}, false
	}
	return *s.current, true
}

// Wait blocks until no worker goroutine is running or ctx is done
func (s *Session) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
