package bot

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"todo-tracker/internal/model"
	"todo-tracker/internal/service"
)

const (
	noCategory    = "No category"
	noCategoryKey = "__no_category__"
	iconDue       = "⏳"
	iconOverdue   = "⚠️"
)

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendWithReplyMarkup(chatID, text, mainMenuKeyboard())
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

// formatTodo renders one todo. labels is nil when the caller already groups
// by category.
func formatTodo(todo model.Todo, labels *service.CategoryLabels, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <code>%s</code> %s", service.PriorityIcon(todo.Priority), shortID(todo.ID), escape(normalizeTitle(todo.Text))))
	if labels != nil {
		if name := labels.Display(todo); name != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(name)))
		}
	}
	sb.WriteByte('\n')

	if due, ok := todo.Due(); ok {
		due = due.In(now.Location())
		switch {
		case todo.Completed:
			sb.WriteString(fmt.Sprintf("   ✅ %s\n", due.Format("Mon 2006-01-02 15:04")))
		case now.After(due):
			sb.WriteString(fmt.Sprintf("   %s %s · <b>overdue</b>\n", iconOverdue, due.Format("Mon 2006-01-02 15:04")))
		case due.Sub(now) <= 48*time.Hour:
			sb.WriteString(fmt.Sprintf("   %s %s · soon\n", iconDue, due.Format("Mon 2006-01-02 15:04")))
		default:
			sb.WriteString(fmt.Sprintf("   ⏰ %s\n", due.Format("Mon 2006-01-02 15:04")))
		}
	}
	if todo.Notes != nil && strings.TrimSpace(*todo.Notes) != "" {
		sb.WriteString(fmt.Sprintf("   📝 %s\n", escape(strings.TrimSpace(*todo.Notes))))
	}
	return sb.String()
}

// shortID is the prefix of a record id shown in chat; commands accept it.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func escape(s string) string {
	return html.EscapeString(s)
}

func categoryLabel(name string) string {
	base := strings.TrimSpace(name)
	var icon string
	switch service.LabelKey(base) {
	case "work":
		icon = "💼"
	case "home":
		icon = "🏠"
	case "shopping":
		icon = "🛒"
	case "health":
		icon = "🩺"
	case "study":
		icon = "🎓"
	case service.LabelKey(noCategory):
		icon = "📁"
	default:
		icon = "🏷️"
	}
	return fmt.Sprintf("%s %s", icon, escape(normalizeTitle(base)))
}
