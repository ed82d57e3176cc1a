package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"todo-tracker/internal/model"
)

type todoRow struct {
	todo model.Todo
	seq  uint64
}

type completedKey struct {
	user      model.UserID
	completed bool
}

type dueEntry struct {
	due int64
	seq uint64
	id  string
}

func (e dueEntry) less(o dueEntry) bool {
	if e.due != o.due {
		return e.due < o.due
	}
	return e.seq < o.seq
}

// TodoStore keeps todos in memory with the by_user, by_user_and_completed and
// by_user_and_due_date indexes.
type TodoStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	nextSeq uint64

	rows        map[string]todoRow
	byUser      map[model.UserID]map[string]struct{}
	byCompleted map[completedKey]map[string]struct{}
	byDueDate   map[model.UserID][]dueEntry
}

func NewTodoStore() *TodoStore {
	return &TodoStore{
		now:         time.Now,
		rows:        make(map[string]todoRow),
		byUser:      make(map[model.UserID]map[string]struct{}),
		byCompleted: make(map[completedKey]map[string]struct{}),
		byDueDate:   make(map[model.UserID][]dueEntry),
	}
}

func (s *TodoStore) Insert(_ context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	todo.ID = uuid.NewString()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	s.nextSeq++
	row := todoRow{todo: todo.Clone(), seq: s.nextSeq}
	s.rows[todo.ID] = row
	s.index(row)
	return nil
}

func (s *TodoStore) Get(_ context.Context, id string) (*model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := row.todo.Clone()
	return &out, nil
}

func (s *TodoStore) ListByUser(_ context.Context, userID model.UserID) ([]model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byUser[userID]), nil
}

func (s *TodoStore) ListByUserAndCompleted(_ context.Context, userID model.UserID, completed bool) ([]model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byCompleted[completedKey{user: userID, completed: completed}]), nil
}

func (s *TodoStore) ListByUserAndDueDate(_ context.Context, userID model.UserID, start, end int64) ([]model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.byDueDate[userID]
	i := sort.Search(len(entries), func(i int) bool { return entries[i].due >= start })

	out := []model.Todo{}
	for ; i < len(entries) && entries[i].due <= end; i++ {
		out = append(out, s.rows[entries[i].id].todo.Clone())
	}
	return out, nil
}

func (s *TodoStore) Patch(_ context.Context, id string, patch model.TodoPatch) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, model.ErrNotFound
	}

	s.unindex(row)
	patch.Apply(&row.todo)
	row.todo.UpdatedAt = s.now()
	s.rows[id] = row
	s.index(row)

	out := row.todo.Clone()
	return &out, nil
}

func (s *TodoStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return model.ErrNotFound
	}
	s.unindex(row)
	delete(s.rows, id)
	return nil
}

// collect copies the rows named by ids in insertion order. Callers hold mu.
func (s *TodoStore) collect(ids map[string]struct{}) []model.Todo {
	rows := make([]todoRow, 0, len(ids))
	for id := range ids {
		rows = append(rows, s.rows[id])
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]model.Todo, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.todo.Clone())
	}
	return out
}

func (s *TodoStore) index(row todoRow) {
	t := row.todo
	addToSet(s.byUser, t.UserID, t.ID)
	addToSet(s.byCompleted, completedKey{user: t.UserID, completed: t.Completed}, t.ID)

	if t.DueDate == nil {
		return
	}
	entry := dueEntry{due: *t.DueDate, seq: row.seq, id: t.ID}
	entries := s.byDueDate[t.UserID]
	i := sort.Search(len(entries), func(i int) bool { return !entries[i].less(entry) })
	entries = append(entries, dueEntry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = entry
	s.byDueDate[t.UserID] = entries
}

func (s *TodoStore) unindex(row todoRow) {
	t := row.todo
	removeFromSet(s.byUser, t.UserID, t.ID)
	removeFromSet(s.byCompleted, completedKey{user: t.UserID, completed: t.Completed}, t.ID)

	if t.DueDate == nil {
		return
	}
	entry := dueEntry{due: *t.DueDate, seq: row.seq, id: t.ID}
	entries := s.byDueDate[t.UserID]
	i := sort.Search(len(entries), func(i int) bool { return !entries[i].less(entry) })
	if i < len(entries) && entries[i].id == t.ID {
		entries = append(entries[:i], entries[i+1:]...)
	}
	if len(entries) == 0 {
		delete(s.byDueDate, t.UserID)
		return
	}
	s.byDueDate[t.UserID] = entries
}

func addToSet[K comparable](m map[K]map[string]struct{}, key K, id string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[id] = struct{}{}
}

func removeFromSet[K comparable](m map[K]map[string]struct{}, key K, id string) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m, key)
	}
}
