package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"taskmind-backend/internal/models"
)

// Store is the durable keyed collection of tasks.
type Store interface {
	Insert(ctx context.Context, t models.Task) (int64, error)
	GetAll(ctx context.Context) ([]models.Task, error)
	GetByID(ctx context.Context, id int64) (models.Task, error)
	GetByClientID(ctx context.Context, clientID string) (models.Task, error)
	Update(ctx context.Context, id int64, f models.Fields) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// MemoryStore keeps tasks in process memory. Used with DB_DRIVER=memory and in tests.
type MemoryStore struct {
	mu     sync.Mutex
	tasks  []models.Task
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Insert(_ context.Context, t models.Task) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ClientID != nil {
		for _, existing := range m.tasks {
			if existing.ClientID != nil && *existing.ClientID == *t.ClientID {
				return 0, errors.Errorf("client_id %s already exists", *t.ClientID)
			}
		}
	}
	m.nextID++
	t.ID = m.nextID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	m.tasks = append(m.tasks, t)
	return t.ID, nil
}

func (m *MemoryStore) GetAll(_ context.Context) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Task, len(m.tasks))
	copy(out, m.tasks)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) GetByID(_ context.Context, id int64) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, models.ErrNotFound
}

func (m *MemoryStore) GetByClientID(_ context.Context, clientID string) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ClientID != nil && *t.ClientID == clientID {
			return t, nil
		}
	}
	return models.Task{}, models.ErrNotFound
}

func (m *MemoryStore) Update(_ context.Context, id int64, f models.Fields) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID != id {
			continue
		}
		t := &m.tasks[i]
		if f.Title != nil {
			t.Title = *f.Title
		}
		if f.Description != nil {
			t.Description = models.OptionalText(f.Description)
		}
		if f.Priority != nil {
			t.Priority = *f.Priority
		}
		if f.Status != nil {
			t.Status = *f.Status
		}
		if f.Category != nil {
			t.Category = *f.Category
		}
		if f.Reason != nil {
			t.Reason = models.OptionalText(f.Reason)
		}
		return 1, nil
	}
	return 0, nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tasks {
		if t.ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// Len reports how many tasks are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
