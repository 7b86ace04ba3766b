package mocks

import (
	"context"
	"sync"

	"github.com/blog-publishing-api/internal/models"
	"github.com/blog-publishing-api/internal/repository"
)

// Verify interface compliance
var _ repository.ViewRepository = (*MockViewRepository)(nil)

// MockViewRepository is a mock implementation of ViewRepository. Setting
// InsertError makes every Create fail, simulating unavailable storage.
type MockViewRepository struct {
	mu          sync.Mutex
	Events      []models.ViewEvent
	InsertError error
	CountError  error
	CreateCalls int
	PanicOnSave bool
}

func NewMockViewRepository() *MockViewRepository {
	return &MockViewRepository{Events: make([]models.ViewEvent, 0)}
}

func (m *MockViewRepository) Create(ctx context.Context, event *models.ViewEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.PanicOnSave {
		panic("view storage exploded")
	}
	if m.InsertError != nil {
		return m.InsertError
	}
	m.Events = append(m.Events, *event)
	return nil
}

func (m *MockViewRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CountError != nil {
		return 0, m.CountError
	}
	return len(m.Events), nil
}

// Paths returns the recorded paths in order
func (m *MockViewRepository) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.Path)
	}
	return out
}
