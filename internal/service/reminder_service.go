package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"todo-tracker/internal/model"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	queries *QueryService
}

func NewReminderService(queries *QueryService) *ReminderService {
	return &ReminderService{queries: queries}
}

// DailySummary lists the user's open todos: overdue, due today, due later this
// week, and without a due date. The result is HTML for chat clients.
func (s *ReminderService) DailySummary(ctx context.Context, user model.UserID, now time.Time) (string, error) {
	open, err := s.queries.ListTodosByCompleted(ctx, user, false)
	if err != nil {
		return "", err
	}

	categories, err := s.queries.ListCategories(ctx, user)
	if err != nil {
		return "", err
	}
	labels := NewCategoryLabels(categories)

	dayStart, dayEnd := DayBounds(now)
	_, weekEnd := WeekBounds(now)

	var later []model.Todo
	if dayEnd.Before(weekEnd) {
		due, err := s.queries.ListTodosByDueDate(ctx, user, dayEnd.UnixMilli()+1, weekEnd.UnixMilli())
		if err != nil {
			return "", err
		}
		for _, todo := range due {
			if !todo.Completed {
				later = append(later, todo)
			}
		}
	}

	var overdue, today, undated []model.Todo
	for _, todo := range open {
		due, ok := todo.Due()
		switch {
		case !ok:
			undated = append(undated, todo)
		case due.Before(dayStart):
			overdue = append(overdue, todo)
		case !due.After(dayEnd):
			today = append(today, todo)
		}
	}

	sortByDueDate(overdue)
	sortByDueDate(today)
	sortByDueDate(later)
	sort.SliceStable(undated, func(i, j int) bool {
		return priorityRank(undated[i].Priority) > priorityRank(undated[j].Priority)
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily summary</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n", now.Format("Monday, 02 Jan 2006")))

	writeSection(&builder, "⚠️ <b>Overdue</b>", "— nothing overdue", overdue, labels, now, true)
	writeSection(&builder, "📅 <b>Today</b>", "— nothing due today", today, labels, now, false)
	writeSection(&builder, "🗓 <b>Later this week</b>", "— nothing else this week", later, labels, now, false)
	writeSection(&builder, "📝 <b>No due date</b>", "— no open todos without a due date", undated, labels, now, false)

	return strings.TrimSpace(builder.String()), nil
}

func writeSection(b *strings.Builder, title, empty string, todos []model.Todo, labels CategoryLabels, now time.Time, overdue bool) {
	b.WriteString("\n" + title + "\n")
	if len(todos) == 0 {
		b.WriteString(empty + "\n")
		return
	}
	for _, todo := range todos {
		b.WriteString(formatDigestTodo(todo, labels, now, overdue))
	}
}

func formatDigestTodo(todo model.Todo, labels CategoryLabels, now time.Time, overdue bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s %s", PriorityIcon(todo.Priority), html.EscapeString(strings.TrimSpace(todo.Text))))
	if name := labels.Display(todo); name != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
	}

	if due, ok := todo.Due(); ok {
		sb.WriteString(fmt.Sprintf("\n   ⏰ %s", due.In(now.Location()).Format("Mon 2006-01-02 15:04")))
		if overdue {
			sb.WriteString(" · <b>overdue</b>")
		}
	}

	if todo.Notes != nil {
		if notes := strings.TrimSpace(*todo.Notes); notes != "" {
			sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(notes)))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}

// PriorityIcon is the marker chat clients show in front of a todo.
func PriorityIcon(p *model.Priority) string {
	if p == nil {
		return "▫️"
	}
	switch *p {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityMedium:
		return "🟡"
	case model.PriorityLow:
		return "🟢"
	default:
		return "▫️"
	}
}

func priorityRank(p *model.Priority) int {
	if p == nil {
		return 0
	}
	switch *p {
	case model.PriorityHigh:
		return 3
	case model.PriorityMedium:
		return 2
	case model.PriorityLow:
		return 1
	default:
		return 0
	}
}

func sortByDueDate(todos []model.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		a, b := todos[i].DueDate, todos[j].DueDate
		if *a != *b {
			return *a < *b
		}
		return priorityRank(todos[i].Priority) > priorityRank(todos[j].Priority)
	})
}
