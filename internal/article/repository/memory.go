package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"newsdesk/internal/article/model"

	"github.com/google/uuid"
)

// MemoryRepository keeps articles in-process. It backs STORE_DRIVER=memory and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	articles map[string]model.Article
	seq      map[string]int64
	next     int64
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		articles: make(map[string]model.Article),
		seq:      make(map[string]int64),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRepository) Insert(_ context.Context, a model.Article) (model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a.ID = uuid.NewString()
	a.CreatedAt = m.now()
	if a.Date.IsZero() {
		a.Date = a.CreatedAt
	}
	m.next++
	m.seq[a.ID] = m.next
	m.articles[a.ID] = a
	return a, nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id string) (model.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[id]
	if !ok {
		return model.Article{}, model.ErrNotFound
	}
	return a, nil
}

// List matches the SQL ordering: date descending, then newest insertion first.
func (m *MemoryRepository) List(_ context.Context, filter model.Filter) ([]model.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make([]model.Article, 0, len(m.articles))
	for _, a := range m.articles {
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.After(res[j].Date)
		}
		return m.seq[res[i].ID] > m.seq[res[j].ID]
	})
	return res, nil
}

func (m *MemoryRepository) Update(_ context.Context, id string, a model.Article) (model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.articles[id]
	if !ok {
		return model.Article{}, model.ErrNotFound
	}
	a.ID = id
	a.CreatedAt = old.CreatedAt
	if a.Date.IsZero() {
		a.Date = old.Date
	}
	m.articles[id] = a
	return a, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return model.ErrNotFound
	}
	delete(m.articles, id)
	delete(m.seq, id)
	return nil
}
