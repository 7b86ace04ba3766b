package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/service"
)

// Verify interface compliance
var (
	_ service.ViewCounter  = (*MockViewCounter)(nil)
	_ service.ViewRecorder = (*MockViewRecorder)(nil)
)

// FakeClock is a settable clock for services
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

// Now returns the current fake instant; pass c.Now as a service.Clock
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// MockViewCounter is an in-memory ViewCounter
type MockViewCounter struct {
	mu        sync.Mutex
	Counts    map[string]int64
	IncrError error
	TopError  error
}

func NewMockViewCounter() *MockViewCounter {
	return &MockViewCounter{Counts: make(map[string]int64)}
}

func (m *MockViewCounter) Incr(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IncrError != nil {
		return m.IncrError
	}
	m.Counts[path]++
	return nil
}

func (m *MockViewCounter) Top(ctx context.Context, n int) ([]models.PathCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.TopError != nil {
		return nil, m.TopError
	}
	out := make([]models.PathCount, 0, len(m.Counts))
	for path, views := range m.Counts {
		out = append(out, models.PathCount{Path: path, Views: views})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].Path < out[j].Path
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// MockViewRecorder captures recorded visits. Done, when set, receives a
// value per Record call (dropped when full) so tests can wait for
// asynchronous recording.
type MockViewRecorder struct {
	mu    sync.Mutex
	Paths []string
	Done  chan struct{}
}

func NewMockViewRecorder() *MockViewRecorder {
	return &MockViewRecorder{Done: make(chan struct{}, 64)}
}

func (m *MockViewRecorder) Record(ctx context.Context, path, ip string) {
	m.mu.Lock()
	m.Paths = append(m.Paths, path)
	m.mu.Unlock()

	if m.Done != nil {
		select {
		case m.Done <- struct{}{}:
		default:
		}
	}
}

// Recorded returns a copy of the recorded paths
func (m *MockViewRecorder) Recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Paths...)
}
