package model

import (
	"fmt"
	"time"
)

// UserID is the opaque owner identifier every record is scoped to.
type UserID string

// Anonymous is the zero UserID: no identity could be resolved for the call.
const Anonymous UserID = ""

func (u UserID) IsAnonymous() bool {
	return u == Anonymous
}

// Priority of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority accepts the wire spelling of a priority.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidArgument, raw)
	}
	return p, nil
}

// Todo is a single task owned by one user.
type Todo struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Text      string    `json:"text" gorm:"not null"`
	Completed bool      `json:"completed" gorm:"not null;default:false;index:idx_todos_user_completed,priority:2"`
	UserID    UserID    `json:"userId" gorm:"type:text;not null;index:idx_todos_user;index:idx_todos_user_completed,priority:1;index:idx_todos_user_due_date,priority:1"`
	DueDate   *int64    `json:"dueDate,omitempty" gorm:"index:idx_todos_user_due_date,priority:2"`
	Category  *string   `json:"category,omitempty"`
	Priority  *Priority `json:"priority,omitempty" gorm:"type:text"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t Todo) Owner() UserID {
	return t.UserID
}

// Due returns the due date as a time, if the todo has one.
func (t Todo) Due() (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*t.DueDate), true
}

// Clone returns a copy that shares no pointers with t.
func (t Todo) Clone() Todo {
	out := t
	if t.DueDate != nil {
		v := *t.DueDate
		out.DueDate = &v
	}
	if t.Category != nil {
		v := *t.Category
		out.Category = &v
	}
	if t.Priority != nil {
		v := *t.Priority
		out.Priority = &v
	}
	if t.Notes != nil {
		v := *t.Notes
		out.Notes = &v
	}
	return out
}

// TodoPatch lists the fields an update touches. A nil field keeps its value;
// there is no way to clear an optional field once it is set.
type TodoPatch struct {
	Text      *string   `json:"text,omitempty"`
	Completed *bool     `json:"completed,omitempty"`
	DueDate   *int64    `json:"dueDate,omitempty"`
	Category  *string   `json:"category,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

func (p TodoPatch) Empty() bool {
	return p.Text == nil && p.Completed == nil && p.DueDate == nil &&
		p.Category == nil && p.Priority == nil && p.Notes == nil
}

// Apply merges the supplied fields into t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.DueDate != nil {
		v := *p.DueDate
		t.DueDate = &v
	}
	if p.Category != nil {
		v := *p.Category
		t.Category = &v
	}
	if p.Priority != nil {
		v := *p.Priority
		t.Priority = &v
	}
	if p.Notes != nil {
		v := *p.Notes
		t.Notes = &v
	}
}
