package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/domain"
	"github.com/yourusername/ytfile-go/pkg/logger"
)

const (
	StatusIdle     = "Ready"
	StatusStarting = "Starting download…"
	StatusComplete = "✓ Download complete!"
	StatusFailed   = "✗ Download failed. Check log."
)

// Notifier announces finished attempts to the user
type Notifier interface {
	NotifyDownloadCompleted(req domain.DownloadRequest, filename string)
	NotifyDownloadFailed(req domain.DownloadRequest, message string)
}

// ViewState is what a front end renders
type ViewState struct {
	Busy          bool                    `json:"busy"`
	Status        string                  `json:"status"`
	Fraction      float64                 `json:"fraction"`
	Indeterminate bool                    `json:"indeterminate"`
	StatusLine    string                  `json:"status_line"`
	Progress      *domain.Progress        `json:"progress,omitempty"`
	Logs          []string                `json:"logs"`
	Request       *domain.DownloadRequest `json:"request,omitempty"`
	LastOutcome   *domain.Outcome         `json:"last_outcome,omitempty"`
	LastRecord    *domain.DownloadRecord  `json:"last_record,omitempty"`
}

// Listener receives every drained event with the state after applying it.
// Listeners run on the presentation goroutine and must not block or call Submit.
type Listener func(ev domain.Event, state ViewState)

// Presenter is the presentation loop: it drains the session on a fixed
// interval and applies events to the view state.
type Presenter struct {
	session     *Session
	history     *HistoryService
	notifier    Notifier
	config      *domain.PresentationConfig
	multiLogger *logger.MultiLogger
	logger      *zap.Logger

	// drainMu orders Submit's view reset against a Tick applying done
	drainMu sync.Mutex

	mu        sync.RWMutex
	state     ViewState
	startedAt time.Time
	listeners []Listener

	runMu    sync.Mutex
	running  bool
	stopChan chan struct{}
	loopWg   sync.WaitGroup
}

// NewPresenter creates a presenter. history, notifier and multiLogger may be nil.
func NewPresenter(
	session *Session,
	history *HistoryService,
	notifier Notifier,
	config *domain.PresentationConfig,
	multiLogger *logger.MultiLogger,
	logger *zap.Logger,
) *Presenter {
	return &Presenter{
		session:     session,
		history:     history,
		notifier:    notifier,
		config:      config,
		multiLogger: multiLogger,
		logger:      logger,
		state:       ViewState{Status: StatusIdle, Logs: []string{}},
	}
}

// Subscribe registers a listener
func (p *Presenter) Subscribe(listener Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, listener)
}

// Submit hands req to the session. It returns false when an attempt is already active.
func (p *Presenter) Submit(req domain.DownloadRequest) bool {
	p.drainMu.Lock()
	defer p.drainMu.Unlock()

	started := time.Now()
	if !p.session.Submit(req) {
		if p.multiLogger != nil {
			p.multiLogger.LogAttemptEvent("submission_rejected", zap.String("url", req.URL))
		}
		return false
	}

	p.mu.Lock()
	p.startedAt = started
	p.state.Busy = true
	p.state.Status = StatusStarting
	p.state.Fraction = 0
	p.state.Indeterminate = false
	p.state.StatusLine = ""
	p.state.Progress = nil
	p.state.Request = &req
	p.state.LastOutcome = nil
	p.state.LastRecord = nil
	p.mu.Unlock()

	if p.multiLogger != nil {
		p.multiLogger.LogAttemptEvent("submission_accepted",
			zap.String("url", req.URL),
			zap.String("mode", string(req.Mode)))
	}
	return true
}

// Snapshot returns a copy of the current view state
func (p *Presenter) Snapshot() ViewState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.clone()
}

// Start starts the poll loop
func (p *Presenter) Start(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.running {
		return fmt.Errorf("presenter already running")
	}
	p.running = true
	p.stopChan = make(chan struct{})

	p.loopWg.Add(1)
	go p.loop(ctx, p.stopChan)
	return nil
}

// Stop stops the poll loop and applies whatever is still pending
func (p *Presenter) Stop() error {
	p.runMu.Lock()
	if !p.running {
		p.runMu.Unlock()
		return fmt.Errorf("presenter not running")
	}
	p.running = false
	close(p.stopChan)
	p.runMu.Unlock()

	p.loopWg.Wait()
	p.Tick()
	return nil
}

// IsRunning returns whether the poll loop is running
func (p *Presenter) IsRunning() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.running
}

func (p *Presenter) loop(ctx context.Context, stop <-chan struct{}) {
	defer p.loopWg.Done()

	interval := p.config.PollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Tick drains the session once and applies the events. It returns the number of events applied.
func (p *Presenter) Tick() int {
	p.drainMu.Lock()
	defer p.drainMu.Unlock()

	batch := p.session.Drain()
	for _, ev := range batch.Events {
		p.mu.Lock()
		p.apply(ev)
		state := p.state.clone()
		listeners := append([]Listener(nil), p.listeners...)
		since := p.startedAt
		p.mu.Unlock()

		if ev.IsDone() && batch.Finished != nil {
			if record := p.finish(*batch.Finished, ev, since); record != nil {
				p.mu.Lock()
				p.state.LastRecord = record
				state = p.state.clone()
				p.mu.Unlock()
			}
		}

		for _, listener := range listeners {
			listener(ev, state)
		}
	}
	return len(batch.Events)
}

func (p *Presenter) apply(ev domain.Event) {
	switch ev.Type {
	case domain.EventLog:
		p.appendLog(ev.Message)
	case domain.EventProgress:
		if ev.Progress == nil {
			return
		}
		progress := *ev.Progress
		p.state.Progress = &progress
		if fraction, ok := progress.Fraction(); ok {
			p.state.Fraction = fraction
			p.state.Indeterminate = false
		} else {
			p.state.Indeterminate = true
		}
		p.state.StatusLine = FormatStatusLine(progress)
	case domain.EventDone:
		p.state.Busy = false
		p.state.LastOutcome = ev.Outcome
		p.state.Indeterminate = false
		if ev.Succeeded() {
			p.state.Fraction = 1
			p.state.Status = StatusComplete
			p.appendLog(StatusComplete)
		} else {
			p.state.Status = StatusFailed
		}
	}
}

func (p *Presenter) appendLog(message string) {
	if message == "" {
		return
	}
	p.state.Logs = append(p.state.Logs, message)
	if limit := p.config.LogTail; limit > 0 && len(p.state.Logs) > limit {
		p.state.Logs = append([]string(nil), p.state.Logs[len(p.state.Logs)-limit:]...)
	}
}

// finish records history and notifies for a finished attempt
func (p *Presenter) finish(req domain.DownloadRequest, ev domain.Event, since time.Time) *domain.DownloadRecord {
	var record *domain.DownloadRecord
	if p.history != nil {
		var err error
		if ev.Succeeded() {
			record, err = p.history.RecordSuccess(req, since)
		} else {
			record, err = p.history.RecordFailure(req, ev.ErrorText())
		}
		if err != nil {
			p.logger.Warn("Could not save to history", zap.Error(err))
			p.mu.Lock()
			p.appendLog("Warning: Could not save to history: " + err.Error())
			p.mu.Unlock()
		}
	}

	if p.notifier != nil {
		if ev.Succeeded() {
			filename := ""
			if record != nil {
				filename = record.Filename
			}
			p.notifier.NotifyDownloadCompleted(req, filename)
		} else {
			p.notifier.NotifyDownloadFailed(req, ev.ErrorText())
		}
	}
	return record
}

func (s ViewState) clone() ViewState {
	c := s
	c.Logs = append([]string{}, s.Logs...)
	if s.Progress != nil {
		progress := *s.Progress
		c.Progress = &progress
	}
	return c
}
