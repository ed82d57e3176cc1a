package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/model"
	"todo-tracker/internal/repository/memory"
	"todo-tracker/internal/service"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 16)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	close(f.updates)
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, msg := range f.sent {
		out = append(out, msg.Text)
	}
	return out
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[int64]model.User
}

func (f *fakeUsers) UpsertFromTelegram(_ context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[telegramID]
	if !ok {
		user = model.User{ID: fmt.Sprintf("user-%d", telegramID), TelegramID: telegramID}
	}
	user.FirstName, user.LastName, user.Username = firstName, lastName, username
	f.users[telegramID] = user
	return &user, nil
}

func (f *fakeUsers) ListAll(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type harness struct {
	bot       *Bot
	api       *fakeAPI
	queries   *service.QueryService
	mutations *service.MutationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	todos, categories := memory.NewTodoStore(), memory.NewCategoryStore()
	queries := service.NewQueryService(todos, categories)
	mutations := service.NewMutationService(todos, categories, log)

	api := newFakeAPI()
	b := newBot(api, &fakeUsers{users: map[int64]model.User{}}, queries, mutations, service.NewReminderService(queries), log)
	b.now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }

	return &harness{bot: b, api: api, queries: queries, mutations: mutations}
}

const chatID int64 = 42

func (h *harness) user() model.UserID {
	return model.UserID(fmt.Sprintf("user-%d", chatID))
}

func (h *harness) send(t *testing.T, text string) {
	t.Helper()
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: chatID, FirstName: "Ada"},
		Chat: &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		command := strings.SplitN(text, " ", 2)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	}
	h.bot.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func (h *harness) tap(t *testing.T, data string) {
	t.Helper()
	h.bot.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID, Type: "private"}},
		Data:    data,
	}})
}

func TestStart_RegistersUser(t *testing.T) {
	h := newHarness(t)

	h.send(t, "/start")

	msg := h.api.last(t)
	assert.Equal(t, chatID, msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "Hi, Ada!")
	assert.Contains(t, msg.Text, "/newtask")
}

func TestNewTaskDialog(t *testing.T) {
	h := newHarness(t)

	h.send(t, "/newtask")
	h.send(t, "Plan sprint")
	h.send(t, "Work")
	h.send(t, "2026-10-15 09:30")
	h.send(t, btnHigh)
	h.send(t, "bring slides")

	todos, err := h.queries.ListTodos(context.Background(), h.user())
	require.NoError(t, err)
	require.Len(t, todos, 1)

	todo := todos[0]
	assert.Equal(t, "Plan sprint", todo.Text)
	require.NotNil(t, todo.Category)
	assert.Equal(t, "Work", *todo.Category)
	require.NotNil(t, todo.DueDate)
	assert.Equal(t, time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC).UnixMilli(), *todo.DueDate)
	require.NotNil(t, todo.Priority)
	assert.Equal(t, model.PriorityHigh, *todo.Priority)
	require.NotNil(t, todo.Notes)
	assert.Equal(t, "bring slides", *todo.Notes)

	texts := h.api.texts()
	assert.Contains(t, strings.Join(texts, "\n"), "Todo saved")
	assert.Contains(t, h.api.last(t).Text, "Open todos")
	assert.Nil(t, h.bot.getConversation(chatID))
}

func TestNewTaskDialog_SkipsOptionalSteps(t *testing.T) {
	h := newHarness(t)

	h.send(t, "/newtask")
	h.send(t, "Water plants")
	h.send(t, btnSkip)
	h.send(t, "tomorrow-ish")
	assert.Contains(t, h.api.last(t).Text, "can't read that date")
	h.send(t, btnSkip)
	h.send(t, "urgent")
	assert.Contains(t, h.api.last(t).Text, "high, medium or low")
	h.send(t, "skip")
	h.send(t, "-")

	todos, err := h.queries.ListTodos(context.Background(), h.user())
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Nil(t, todos[0].Category)
	assert.Nil(t, todos[0].DueDate)
	assert.Nil(t, todos[0].Priority)
	assert.Nil(t, todos[0].Notes)
}

func TestNewTaskDialog_Cancel(t *testing.T) {
	h := newHarness(t)

	h.send(t, "/newtask")
	h.send(t, "Something")
	h.send(t, btnCancelDialog)

	assert.Nil(t, h.bot.getConversation(chatID))
	todos, err := h.queries.ListTodos(context.Background(), h.user())
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestTodoList_CompleteViaButton(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/start")

	todo, err := h.mutations.CreateTodo(context.Background(), h.user(), service.TodoInput{Text: "Buy milk", Category: strPtr("home")})
	require.NoError(t, err)
	_, err = h.mutations.CreateCategory(context.Background(), h.user(), "Home", "")
	require.NoError(t, err)

	h.send(t, "/tasks")
	list := h.api.last(t)
	assert.Contains(t, list.Text, "🏠 Home")
	assert.Contains(t, list.Text, "Buy milk")
	markup, ok := list.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, cbCompletePrefix+todo.ID, *markup.InlineKeyboard[0][0].CallbackData)

	h.tap(t, cbCompletePrefix+todo.ID)
	assert.Contains(t, h.api.last(t).Text, "Mark «Buy milk» as completed?")
	assert.NotEmpty(t, h.api.requests)

	h.send(t, btnConfirm)

	got, err := h.queries.GetTodo(context.Background(), h.user(), todo.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Contains(t, h.api.last(t).Text, "no open todos")
}

func TestTodoList_DeleteCancelled(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/start")

	todo, err := h.mutations.CreateTodo(context.Background(), h.user(), service.TodoInput{Text: "Keep me"})
	require.NoError(t, err)

	h.tap(t, cbDeletePrefix+todo.ID)
	h.send(t, btnCancel)

	_, err = h.queries.GetTodo(context.Background(), h.user(), todo.ID)
	require.NoError(t, err)
}

func TestCallback_ForeignTodoIsNotFound(t *testing.T) {
	h := newHarness(t)

	other, err := h.mutations.CreateTodo(context.Background(), "someone-else", service.TodoInput{Text: "secret"})
	require.NoError(t, err)

	h.tap(t, cbDeletePrefix+other.ID)
	assert.Contains(t, h.api.last(t).Text, "no longer exists")
	_, pending := h.bot.getConfirmation(chatID)
	assert.False(t, pending)
}

func TestDoneAndDeleteByShortID(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/start")

	todo, err := h.mutations.CreateTodo(context.Background(), h.user(), service.TodoInput{Text: "Pay rent"})
	require.NoError(t, err)

	h.send(t, "/done "+shortID(todo.ID))
	assert.Contains(t, h.api.last(t).Text, "«Pay rent» is done")

	h.send(t, "/done "+todo.ID)
	assert.Contains(t, h.api.last(t).Text, "already completed")

	h.send(t, "/delete #"+shortID(todo.ID))
	assert.Contains(t, h.api.last(t).Text, "deleted")

	h.send(t, "/delete "+shortID(todo.ID))
	assert.Contains(t, h.api.last(t).Text, "No such todo")

	h.send(t, "/done")
	assert.Contains(t, h.api.last(t).Text, "/done 1a2b3c4d")
}

func TestCategoryCommands(t *testing.T) {
	h := newHarness(t)

	h.send(t, "/categories")
	assert.Contains(t, h.api.last(t).Text, "No categories yet")

	h.send(t, "/newcategory Side projects #00ff00")
	assert.Contains(t, h.api.last(t).Text, "Side projects")

	categories, err := h.queries.ListCategories(context.Background(), h.user())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Side projects", categories[0].Name)
	assert.Equal(t, "#00ff00", categories[0].Color)

	h.send(t, "/categories")
	assert.Contains(t, h.api.last(t).Text, shortID(categories[0].ID))

	h.send(t, "/delcategory "+shortID(categories[0].ID))
	assert.Contains(t, h.api.last(t).Text, "deleted")

	categories, err = h.queries.ListCategories(context.Background(), h.user())
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestWeekCommand(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/start")

	inWeek := time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC).UnixMilli()
	nextWeek := time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC).UnixMilli()
	_, err := h.mutations.CreateTodo(context.Background(), h.user(), service.TodoInput{Text: "Friday thing", DueDate: &inWeek})
	require.NoError(t, err)
	_, err = h.mutations.CreateTodo(context.Background(), h.user(), service.TodoInput{Text: "Later thing", DueDate: &nextWeek})
	require.NoError(t, err)

	h.send(t, "/week")
	text := h.api.last(t).Text
	assert.Contains(t, text, "Oct 11 – Oct 17")
	assert.Contains(t, text, "Friday thing")
	assert.NotContains(t, text, "Later thing")
}

func TestReportAndDailyReports(t *testing.T) {
	h := newHarness(t)
	h.send(t, "/start")

	_, err := h.mutations.CreateTodo(context.Background(), h.user(), service.TodoInput{Text: "Undated"})
	require.NoError(t, err)

	h.send(t, "/report")
	assert.Contains(t, h.api.last(t).Text, "Daily summary")

	before := len(h.api.texts())
	require.NoError(t, h.bot.SendDailyReports(context.Background()))
	texts := h.api.texts()
	require.Len(t, texts, before+1)
	assert.Contains(t, texts[len(texts)-1], "Undated")
	assert.Equal(t, chatID, h.api.last(t).ChatID)
}

func TestIgnoresGroupChats(t *testing.T) {
	h := newHarness(t)

	h.bot.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: chatID},
		Chat:     &tgbotapi.Chat{ID: -100, Type: "group"},
		Text:     "/start",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}})
	assert.Empty(t, h.api.texts())
}

func TestStart_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.bot.Start(ctx) }()

	h.api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: chatID, FirstName: "Ada"},
		Chat:     &tgbotapi.Chat{ID: chatID, Type: "private"},
		Text:     "/help",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 5}},
	}}
	require.Eventually(t, func() bool { return len(h.api.texts()) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("bot did not stop")
	}
}

func TestParseCategoryArgs(t *testing.T) {
	name, color := parseCategoryArgs("  Side   projects #0f0 ")
	assert.Equal(t, "Side projects", name)
	assert.Equal(t, "#0f0", color)

	name, color = parseCategoryArgs("#hashtag")
	assert.Equal(t, "#hashtag", name)
	assert.Equal(t, "", color)
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Buy milk", shortTitle("buy milk", 24))
	assert.Equal(t, "Abcd…", shortTitle("abcdefgh", 5))
}

func strPtr(v string) *string {
	return &v
}
