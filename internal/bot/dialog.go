package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"todo-tracker/internal/model"
	"todo-tracker/internal/service"
)

var dueDateLayouts = []string{"2006-01-02 15:04", "2006-01-02"}

func (b *Bot) startNewTodoConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.log.Info("start new todo conversation", "telegram_id", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageText})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New todo.\n<b>Step 1:</b> what needs doing?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageText:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The todo needs some text.", cancelKeyboard())
		}
		state.input.Text = text
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Pick a category or type your own (or skip).", b.categoryKeyboard(ctx, msg.From))
	case stageCategory:
		if !isSkipInput(text) {
			state.input.Category = &text
		}
		state.stage = stageDueDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ When is it due? Use <code>2026-11-30</code> or <code>2026-11-30 18:00</code> (or skip).", skipKeyboard())
	case stageDueDate:
		if !isSkipInput(text) {
			due, err := parseDueDate(text, b.now().Location())
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "I can't read that date. Use <code>2026-11-30</code> or <code>2026-11-30 18:00</code>, or skip.", skipKeyboard())
			}
			ms := due.UnixMilli()
			state.input.DueDate = &ms
		}
		state.stage = stagePriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "❗ How important is it?", priorityKeyboard())
	case stagePriority:
		if !isSkipInput(text) {
			priority, err := parsePriorityInput(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Pick high, medium or low, or skip.", priorityKeyboard())
			}
			state.input.Priority = &priority
		}
		state.stage = stageNotes
		return b.sendWithReplyMarkup(msg.Chat.ID, "📝 Any notes? (or skip)", skipKeyboard())
	case stageNotes:
		if !isSkipInput(text) {
			state.input.Notes = &text
		}
		err := b.finishTodoCreation(ctx, msg.From, state.input, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Input reset. Try /newtask again.")
	}
}

func (b *Bot) finishTodoCreation(ctx context.Context, from *tgbotapi.User, input service.TodoInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	todo, err := b.mutations.CreateTodo(ctx, user, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the todo: %s", escape(err.Error())))
	}

	b.log.Info("todo created", "todo_id", todo.ID, "user_id", user)

	var summary strings.Builder
	summary.WriteString("✅ <b>Todo saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> <code>%s</code>\n", shortID(todo.ID)))
	summary.WriteString(fmt.Sprintf("• <b>Text:</b> %s\n", escape(normalizeTitle(todo.Text))))
	if todo.Category != nil {
		summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", escape(*todo.Category)))
	}
	if due, ok := todo.Due(); ok {
		summary.WriteString(fmt.Sprintf("• <b>Due:</b> %s\n", due.In(b.now().Location()).Format("Mon 2006-01-02 15:04")))
	}
	if todo.Priority != nil {
		summary.WriteString(fmt.Sprintf("• <b>Priority:</b> %s %s\n", service.PriorityIcon(todo.Priority), *todo.Priority))
	}
	if todo.Notes != nil {
		summary.WriteString(fmt.Sprintf("• <b>Notes:</b> %s\n", escape(*todo.Notes)))
	}

	if err := b.sendWithReplyMarkup(chatID, strings.TrimSpace(summary.String()), tgbotapi.NewRemoveKeyboard(true)); err != nil {
		return err
	}
	return b.sendTodoList(ctx, chatID, user)
}

func parseDueDate(text string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range dueDateLayouts {
		t, err := time.ParseInLocation(layout, text, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parsePriorityInput accepts the keyboard labels as well as the bare names.
func parsePriorityInput(text string) (model.Priority, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return model.ParsePriority("")
	}
	return model.ParsePriority(fields[len(fields)-1])
}
