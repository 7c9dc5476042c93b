package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/ytfile-go/internal/domain"
)

// fakeEngine replays scripted callbacks and then returns err
type fakeEngine struct {
	mu         sync.Mutex
	calls      int
	lastURL    string
	lastConfig *domain.EngineConfig

	progress []domain.RawProgress
	logs     map[domain.LogLevel]string
	err      error
	release  chan struct{} // blocks after the callbacks until closed
	output   string        // file name created in the save dir before returning
}

func (e *fakeEngine) Run(ctx context.Context, url string, config *domain.EngineConfig, hooks domain.EngineHooks) error {
	e.mu.Lock()
	e.calls++
	e.lastURL = url
	e.lastConfig = config
	e.mu.Unlock()

	for _, raw := range e.progress {
		hooks.OnProgress(raw)
	}
	for level, msg := range e.logs {
		hooks.OnLog(level, msg)
	}

	if e.release != nil {
		select {
		case <-e.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if e.output != "" && e.err == nil {
		dir := filepath.Dir(config.OutputTemplate)
		if err := os.WriteFile(filepath.Join(dir, e.output), []byte("media"), 0644); err != nil {
			return err
		}
	}
	return e.err
}

func (e *fakeEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type fakeHelpers struct {
	dir string
	err error
}

func (h fakeHelpers) Locate() (string, error) {
	return h.dir, h.err
}

type fakeTagger struct {
	mu      sync.Mutex
	tagged  []string
	err     error
	panicOn string // panics with this value when set
}

func (f *fakeTagger) Tag(path string, req domain.DownloadRequest) error {
	f.mu.Lock()
	f.tagged = append(f.tagged, path)
	f.mu.Unlock()
	if f.panicOn != "" {
		panic(f.panicOn)
	}
	return f.err
}

type fakeNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
}

func (n *fakeNotifier) NotifyDownloadCompleted(req domain.DownloadRequest, filename string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, filename)
}

func (n *fakeNotifier) NotifyDownloadFailed(req domain.DownloadRequest, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, message)
}

// mockHistoryRepo implements domain.HistoryRepository for testing
type mockHistoryRepo struct {
	mu      sync.Mutex
	records []*domain.DownloadRecord
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{}
}

func (m *mockHistoryRepo) Create(record *domain.DownloadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *mockHistoryRepo) FindByID(id string) (*domain.DownloadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
}

func (m *mockHistoryRepo) FindRecent(limit int) ([]*domain.DownloadRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*domain.DownloadRecord(nil), m.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockHistoryRepo) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, id)
}

func (m *mockHistoryRepo) Prune(keep int) (int64, error) {
	recent, _ := m.FindRecent(keep)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := int64(len(m.records) - len(recent))
	m.records = recent
	return removed, nil
}

func (m *mockHistoryRepo) Count() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func downloading(downloaded, total float64) domain.RawProgress {
	return domain.RawProgress{
		"status":           "downloading",
		"downloaded_bytes": downloaded,
		"total_bytes":      total,
		"speed":            250000.0,
		"eta":              2.0,
		"filename":         "/tmp/out/clip.mp4",
	}
}

func newTestOrchestrator(engine domain.Engine, helpers HelperResolver, channel *EventChannel) *Orchestrator {
	return NewOrchestrator(engine, helpers, nil, channel, nil, zap.NewNop())
}

// drainUntilDone drains the session until a done event is observed
func drainUntilDone(t *testing.T, session *Session) []domain.Event {
	t.Helper()
	var events []domain.Event
	require.Eventually(t, func() bool {
		events = append(events, session.DrainAll()...)
		return len(events) > 0 && events[len(events)-1].IsDone()
	}, 5*time.Second, 5*time.Millisecond)
	return events
}

func progressEvents(events []domain.Event) []domain.Progress {
	var out []domain.Progress
	for _, ev := range events {
		if ev.Type == domain.EventProgress {
			out = append(out, *ev.Progress)
		}
	}
	return out
}

func doneCount(events []domain.Event) int {
	n := 0
	for _, ev := range events {
		if ev.IsDone() {
			n++
		}
	}
	return n
}
