package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"todo-tracker/internal/model"
	"todo-tracker/internal/service"
)

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /newtask — add a todo step by step\n" +
	"• /tasks — open todos, complete or delete with a tap\n" +
	"• /week — todos due this week\n" +
	"• /done &lt;id&gt; — mark a todo completed (the short id is enough)\n" +
	"• /delete &lt;id&gt; — delete a todo\n" +
	"• /categories — your categories\n" +
	"• /newcategory &lt;name&gt; [#color] — add a category\n" +
	"• /delcategory &lt;id&gt; — delete a category, todos keep their label\n" +
	"• /report — today's summary\n" +
	"• /cancel — cancel the current input"

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled. Start again whenever you like.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.log.Info("command", "telegram_id", msg.From.ID, "command", msg.Command(), "args", msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if state := b.getConversation(msg.From.ID); state != nil {
		b.log.Debug("conversation step", "telegram_id", msg.From.ID, "stage", state.stage)
		return b.handleConversation(ctx, msg, state)
	}

	return b.sendText(msg.Chat.ID, "I didn't get that. Send /newtask to add a todo or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "newtask":
		return b.startNewTodoConversation(ctx, msg)
	case "tasks":
		return b.handleListTodos(ctx, msg)
	case "week":
		return b.handleWeek(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "newcategory":
		return b.handleNewCategory(ctx, msg)
	case "delcategory":
		return b.handleDeleteCategory(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(msg.Text)) {
	case strings.ToLower(menuLabelNewTodo):
		return true, b.startNewTodoConversation(ctx, msg)
	case strings.ToLower(menuLabelTodos):
		return true, b.handleListTodos(ctx, msg)
	case strings.ToLower(menuLabelWeek):
		return true, b.handleWeek(ctx, msg)
	case strings.ToLower(menuLabelCategories):
		return true, b.handleCategories(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.sendText(msg.Chat.ID, helpText)
	default:
		return false, nil
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep your todos and remind you about them every day.</b>\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.reminders.DailySummary(ctx, user, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the summary: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleListTodos(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendTodoList(ctx, msg.Chat.ID, user)
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	now := b.now()
	start, end := service.WeekBounds(now)
	todos, err := b.queries.ListTodosByDueDate(ctx, user, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load todos: %s", escape(err.Error())))
	}
	if len(todos) == 0 {
		return b.sendText(msg.Chat.ID, "Nothing is due this week.")
	}

	categories, _ := b.queries.ListCategories(ctx, user)
	labels := service.NewCategoryLabels(categories)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🗓 <b>This week</b> (%s – %s)\n\n", start.Format("Jan 02"), end.Format("Jan 02")))
	for _, todo := range todos {
		builder.WriteString(formatTodo(todo, &labels, now))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Give me the todo id: /done 1a2b3c4d")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	todo, err := b.findTodo(ctx, user, ref)
	if err != nil {
		return b.sendText(msg.Chat.ID, lookupErrorText(err, "todo"))
	}
	if todo.Completed {
		return b.sendText(msg.Chat.ID, "That todo is already completed.")
	}

	completed := true
	if err := b.mutations.UpdateTodo(ctx, user, todo.ID, model.TodoPatch{Completed: &completed}); err != nil {
		return b.sendText(msg.Chat.ID, lookupErrorText(err, "todo"))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ «%s» is done.", escape(normalizeTitle(todo.Text))))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Give me the todo id: /delete 1a2b3c4d")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	todo, err := b.findTodo(ctx, user, ref)
	if err != nil {
		return b.sendText(msg.Chat.ID, lookupErrorText(err, "todo"))
	}
	if err := b.mutations.DeleteTodo(ctx, user, todo.ID); err != nil {
		return b.sendText(msg.Chat.ID, lookupErrorText(err, "todo"))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 «%s» deleted.", escape(normalizeTitle(todo.Text))))
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.queries.ListCategories(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load categories: %s", escape(err.Error())))
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "No categories yet. Add one with /newcategory Work #ff0000")
	}

	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, c := range categories {
		builder.WriteString(fmt.Sprintf("• %s <code>%s</code>", categoryLabel(c.Name), shortID(c.ID)))
		if c.Color != "" {
			builder.WriteString(fmt.Sprintf(" · %s", escape(c.Color)))
		}
		builder.WriteByte('\n')
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleNewCategory(ctx context.Context, msg *tgbotapi.Message) error {
	name, color := parseCategoryArgs(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Give me a name: /newcategory Work #ff0000")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	category, err := b.mutations.CreateCategory(ctx, user, name, color)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not save the category: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📂 Category %s added.", categoryLabel(category.Name)))
}

func (b *Bot) handleDeleteCategory(ctx context.Context, msg *tgbotapi.Message) error {
	ref := strings.TrimSpace(msg.CommandArguments())
	if ref == "" {
		return b.sendText(msg.Chat.ID, "Give me the category id from /categories: /delcategory 1a2b3c4d")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.queries.ListCategories(ctx, user)
	if err != nil {
		return err
	}
	category, err := matchByPrefix(categories, ref, func(c model.Category) string { return c.ID })
	if err != nil {
		return b.sendText(msg.Chat.ID, lookupErrorText(err, "category"))
	}
	if err := b.mutations.DeleteCategory(ctx, user, category.ID); err != nil {
		return b.sendText(msg.Chat.ID, lookupErrorText(err, "category"))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Category %s deleted.", categoryLabel(category.Name)))
}

// parseCategoryArgs splits "/newcategory Side projects #00ff00" into name and color.
func parseCategoryArgs(args string) (string, string) {
	fields := strings.Fields(args)
	color := ""
	if n := len(fields); n > 1 && strings.HasPrefix(fields[n-1], "#") {
		color = fields[n-1]
		fields = fields[:n-1]
	}
	return strings.Join(fields, " "), color
}

var errAmbiguous = errors.New("ambiguous id")

// findTodo resolves a full id or a unique id prefix among the user's todos.
func (b *Bot) findTodo(ctx context.Context, user model.UserID, ref string) (*model.Todo, error) {
	if todo, err := b.queries.GetTodo(ctx, user, ref); err == nil {
		return todo, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	todos, err := b.queries.ListTodos(ctx, user)
	if err != nil {
		return nil, err
	}
	return matchByPrefix(todos, ref, func(t model.Todo) string { return t.ID })
}

func matchByPrefix[T any](items []T, ref string, id func(T) string) (*T, error) {
	ref = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ref), "#"))
	if ref == "" {
		return nil, model.ErrNotFound
	}

	var found *T
	for i := range items {
		if !strings.HasPrefix(id(items[i]), ref) {
			continue
		}
		if found != nil {
			return nil, errAmbiguous
		}
		found = &items[i]
	}
	if found == nil {
		return nil, model.ErrNotFound
	}
	return found, nil
}

func lookupErrorText(err error, kind string) string {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return fmt.Sprintf("No such %s.", kind)
	case errors.Is(err, errAmbiguous):
		return "Several items start with that id, give me a few more characters."
	default:
		return fmt.Sprintf("Error: %s", escape(err.Error()))
	}
}
