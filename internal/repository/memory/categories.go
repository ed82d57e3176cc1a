package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"todo-tracker/internal/model"
)

type categoryRow struct {
	category model.Category
	seq      uint64
}

// CategoryStore keeps categories in memory with a by_user index.
type CategoryStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	nextSeq uint64

	rows   map[string]categoryRow
	byUser map[model.UserID]map[string]struct{}
}

func NewCategoryStore() *CategoryStore {
	return &CategoryStore{
		now:    time.Now,
		rows:   make(map[string]categoryRow),
		byUser: make(map[model.UserID]map[string]struct{}),
	}
}

func (s *CategoryStore) Insert(_ context.Context, category *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category.ID = uuid.NewString()
	category.CreatedAt = s.now()

	s.nextSeq++
	s.rows[category.ID] = categoryRow{category: *category, seq: s.nextSeq}
	addToSet(s.byUser, category.UserID, category.ID)
	return nil
}

func (s *CategoryStore) Get(_ context.Context, id string) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := row.category
	return &out, nil
}

func (s *CategoryStore) ListByUser(_ context.Context, userID model.UserID) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	rows := make([]categoryRow, 0, len(ids))
	for id := range ids {
		rows = append(rows, s.rows[id])
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]model.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.category)
	}
	return out, nil
}

func (s *CategoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return model.ErrNotFound
	}
	removeFromSet(s.byUser, row.category.UserID, id)
	delete(s.rows, id)
	return nil
}
