package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"todo-tracker/internal/model"
	"todo-tracker/internal/service"
)

func (b *Bot) sendTodoList(ctx context.Context, chatID int64, user model.UserID) error {
	todos, err := b.queries.ListTodosByCompleted(ctx, user, false)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load todos: %s", escape(err.Error())))
	}
	if len(todos) == 0 {
		return b.sendText(chatID, "You have no open todos. Add one with /newtask.")
	}

	categories, _ := b.queries.ListCategories(ctx, user)
	labels := service.NewCategoryLabels(categories)

	type categoryGroup struct {
		Name  string
		Todos []model.Todo
	}

	groups := make(map[string]*categoryGroup)
	order := make([]string, 0, len(todos))
	for _, todo := range todos {
		key, display := noCategoryKey, noCategory
		if name := labels.Display(todo); name != "" {
			key, display = service.LabelKey(name), name
		}
		group, ok := groups[key]
		if !ok {
			group = &categoryGroup{Name: display}
			groups[key] = group
			order = append(order, key)
		}
		group.Todos = append(group.Todos, todo)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i] == noCategoryKey {
			return false
		}
		if order[j] == noCategoryKey {
			return true
		}
		return strings.Compare(groups[order[i]].Name, groups[order[j]].Name) < 0
	})

	now := b.now()
	var builder strings.Builder
	builder.WriteString("📋 <b>Open todos</b>\n")
	builder.WriteString("Tap a button to complete or delete a todo.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, key := range order {
		section := groups[key]
		sort.SliceStable(section.Todos, func(i, j int) bool {
			a, c := section.Todos[i].DueDate, section.Todos[j].DueDate
			switch {
			case a != nil && c != nil:
				return *a < *c
			case a != nil:
				return true
			default:
				return false
			}
		})

		builder.WriteString(fmt.Sprintf("<b>%s</b>\n", categoryLabel(section.Name)))
		for _, todo := range section.Todos {
			builder.WriteString(formatTodo(todo, nil, now))
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ %s", shortTitle(todo.Text, 24)), cbCompletePrefix+todo.ID),
				tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+todo.ID),
			))
		}
		builder.WriteByte('\n')
	}

	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("callback ack", "error", err)
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		b.log.Info("callback complete request", "telegram_id", cb.From.ID, "todo_id", strings.TrimPrefix(data, cbCompletePrefix))
		return b.askConfirmation(ctx, cb.Message.Chat.ID, cb.From, strings.TrimPrefix(data, cbCompletePrefix), actionComplete)
	case strings.HasPrefix(data, cbDeletePrefix):
		b.log.Info("callback delete request", "telegram_id", cb.From.ID, "todo_id", strings.TrimPrefix(data, cbDeletePrefix))
		return b.askConfirmation(ctx, cb.Message.Chat.ID, cb.From, strings.TrimPrefix(data, cbDeletePrefix), actionDelete)
	default:
		return nil
	}
}

func (b *Bot) askConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, todoID string, action confirmationAction) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	todo, err := b.queries.GetTodo(ctx, user, todoID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return b.sendText(chatID, "That todo no longer exists.")
		}
		return err
	}

	var text string
	if action == actionDelete {
		text = fmt.Sprintf("Delete «%s»?", escape(normalizeTitle(todo.Text)))
	} else {
		if todo.Completed {
			return b.sendText(chatID, "That todo is already completed.")
		}
		text = fmt.Sprintf("Mark «%s» as completed?", escape(normalizeTitle(todo.Text)))
	}

	b.setConfirmation(from.ID, confirmationRequest{todoID: todo.ID, action: action})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.applyConfirmed(ctx, msg.Chat.ID, msg.From, req)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "🔹 Nothing changed.")
	default:
		prompt := "Confirm or cancel completing the todo."
		if req.action == actionDelete {
			prompt = "Confirm or cancel deleting the todo."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

func (b *Bot) applyConfirmed(ctx context.Context, chatID int64, from *tgbotapi.User, req confirmationRequest) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	todo, err := b.queries.GetTodo(ctx, user, req.todoID)
	if err != nil {
		return b.sendText(chatID, lookupErrorText(err, "todo"))
	}

	var info string
	switch req.action {
	case actionDelete:
		if err := b.mutations.DeleteTodo(ctx, user, todo.ID); err != nil {
			return b.sendText(chatID, lookupErrorText(err, "todo"))
		}
		info = fmt.Sprintf("🗑 «%s» deleted.", escape(normalizeTitle(todo.Text)))
		b.log.Info("todo deleted", "todo_id", todo.ID, "user_id", user)
	default:
		completed := true
		if err := b.mutations.UpdateTodo(ctx, user, todo.ID, model.TodoPatch{Completed: &completed}); err != nil {
			return b.sendText(chatID, lookupErrorText(err, "todo"))
		}
		info = fmt.Sprintf("✅ «%s» is done.", escape(normalizeTitle(todo.Text)))
		b.log.Info("todo completed", "todo_id", todo.ID, "user_id", user)
	}

	if err := b.sendText(chatID, info); err != nil {
		return err
	}
	return b.sendTodoList(ctx, chatID, user)
}
