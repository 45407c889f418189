package bot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gratefultolord/realtor_bot/internal/db"
	"github.com/gratefultolord/realtor_bot/internal/files"
	"github.com/gratefultolord/realtor_bot/internal/session"
	"github.com/gratefultolord/realtor_bot/internal/sheets"
	"github.com/gratefultolord/realtor_bot/internal/status"
	"github.com/gratefultolord/realtor_bot/internal/texts"
	"github.com/gratefultolord/realtor_bot/internal/tg/tgtest"
)

type appendCall struct {
	table  string
	values []string
}

type fakeSink struct {
	mu    sync.Mutex
	calls []appendCall
	fail  bool
	panic bool
}

func (s *fakeSink) Append(_ context.Context, table string, values []string) bool {
	if s.panic {
		panic("sink exploded")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, appendCall{table: table, values: values})
	return !s.fail
}

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *fakeNotifier) Broadcast(_ context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
}

type harness struct {
	svc      *BotService
	rec      *tgtest.Recorder
	sink     *fakeSink
	notifier *fakeNotifier
	gate     *status.File
	registry *db.Registry
	states   *session.Memory[UserState]
	catalog  *texts.Catalog
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	photo := filepath.Join(dir, "welcome.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o644))

	database, err := db.New(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate(context.Background()))

	catalog, err := texts.Default()
	require.NoError(t, err)

	logger := zap.NewNop()
	h := &harness{
		rec:      tgtest.NewRecorder(),
		sink:     &fakeSink{},
		notifier: &fakeNotifier{},
		gate:     status.NewFile(filepath.Join(dir, "status.json"), logger),
		registry: db.NewRegistry(database.Conn),
		states:   session.NewMemory[UserState](),
		catalog:  catalog,
	}
	require.NoError(t, h.gate.Ensure())

	h.svc = New(h.rec, catalog, h.registry, h.sink, h.notifier, h.gate,
		files.NewPhotoService(photo, logger), h.states, logger)

	return h
}

func (h *harness) say(userID int64, username, text string) {
	h.svc.HandleUpdate(context.Background(), textUpdate(userID, username, text))
}

func (h *harness) menu(key string) string {
	return h.catalog.Get("main_menu", key)
}

func (h *harness) response(key string) string {
	return h.catalog.Get("responses", key)
}

func (h *harness) lastText() string {
	return tgtest.Text(h.rec.Last())
}

func (h *harness) state(userID int64) (UserState, bool) {
	st, ok, _ := h.states.Get(context.Background(), userID)
	return st, ok
}

func textUpdate(userID int64, username, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, UserName: username},
		Chat:      &tgbotapi.Chat{ID: userID, Type: "private"},
		Text:      text,
	}

	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}

	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func contactUpdate(userID int64, username, phone string) tgbotapi.Update {
	u := textUpdate(userID, username, "")
	u.Message.Contact = &tgbotapi.Contact{PhoneNumber: phone, UserID: userID}
	return u
}

func TestStart_SendsWelcomePhotoAndRegistersOnce(t *testing.T) {
	h := newHarness(t)

	h.say(1, "ivan", "/start")
	h.say(1, "ivan", "/start")

	ids, err := h.registry.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	require.Len(t, h.rec.Sent, 2)
	welcome, ok := h.rec.Sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, h.catalog.Get("welcome", "greeting"), welcome.Caption)
	assert.Equal(t,
		[]string{h.menu("search_property"), h.menu("sell_property"), h.menu("excursion")},
		tgtest.ReplyLabels(welcome),
	)

	again := h.rec.Sent[1].(tgbotapi.PhotoConfig)
	assert.Equal(t, tgbotapi.FileID("photo-file-id"), again.File)
}

func TestStart_ResetsActiveFlow(t *testing.T) {
	h := newHarness(t)

	h.say(1, "ivan", h.menu("search_property"))
	_, ok := h.state(1)
	require.True(t, ok)

	h.say(1, "ivan", "/start")
	_, ok = h.state(1)
	assert.False(t, ok)
}

func TestSearch_EndToEnd(t *testing.T) {
	h := newHarness(t)

	h.say(7, "ivan", "/start")

	h.say(7, "ivan", h.menu("search_property"))
	assert.Equal(t, h.response("property_type"), h.lastText())
	assert.Equal(t,
		[]string{h.menu("new_build"), h.menu("secondary"), h.menu("historic"), h.menu("back")},
		tgtest.ReplyLabels(h.rec.Last()),
	)

	h.say(7, "ivan", h.menu("secondary"))
	assert.Equal(t, h.response("rooms"), h.lastText())
	assert.Equal(t, []string{"1", "2", "3", "4+", "Отмена"}, tgtest.ReplyLabels(h.rec.Last()))

	h.say(7, "ivan", "2")
	assert.Equal(t, h.response("district"), h.lastText())

	h.say(7, "ivan", "Центр")
	assert.Equal(t, h.response("budget"), h.lastText())

	h.say(7, "ivan", "5-10 млн")
	assert.Equal(t, h.response("phone"), h.lastText())

	phoneKB := h.rec.Last().(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.True(t, phoneKB.Keyboard[0][0].RequestContact)

	h.svc.HandleUpdate(context.Background(), contactUpdate(7, "ivan", "+1000"))

	require.Len(t, h.sink.calls, 1)
	assert.Equal(t, sheets.SearchTable, h.sink.calls[0].table)
	assert.Equal(t,
		[]string{"Вторичное жилье", "2", "Центр", "5-10 млн", "", "+1000", "ivan.t.me"},
		h.sink.calls[0].values,
	)

	require.Len(t, h.notifier.texts, 1)
	notice := h.notifier.texts[0]
	assert.Contains(t, notice, "<b>Новая заявка от бота</b>")
	assert.Contains(t, notice, "Заявка на подбор:")
	assert.Contains(t, notice, "Тип: Вторичное жилье")
	assert.Contains(t, notice, "Состояние: -")
	assert.Contains(t, notice, "Телефон: +1000")
	assert.Contains(t, notice, "Telegram: @ivan")

	assert.Equal(t, h.response("success"), h.lastText())
	assert.Equal(t,
		[]string{h.menu("search_property"), h.menu("sell_property"), h.menu("excursion")},
		tgtest.ReplyLabels(h.rec.Last()),
	)

	_, ok := h.state(7)
	assert.False(t, ok)
}

func TestSearch_HistoricAsksCondition(t *testing.T) {
	h := newHarness(t)

	h.say(3, "", h.menu("search_property"))
	h.say(3, "", h.menu("historic"))
	h.say(3, "", "4+")
	h.say(3, "", "Юг")
	h.say(3, "", "20+ млн")
	assert.Equal(t, h.response("condition"), h.lastText())

	st, _ := h.state(3)
	assert.Equal(t, StepCondition, st.Step)

	h.say(3, "", "Под ремонт")
	assert.Equal(t, h.response("phone"), h.lastText())

	h.say(3, "", h.menu("decline"))

	require.Len(t, h.sink.calls, 1)
	assert.Equal(t,
		[]string{"Исторический центр", "4+", "Юг", "20+ млн", "Под ремонт", Declined, "Скрыт"},
		h.sink.calls[0].values,
	)
	require.Len(t, h.notifier.texts, 1)
	assert.Contains(t, h.notifier.texts[0], "Состояние: Под ремонт")
	assert.Contains(t, h.notifier.texts[0], "Телефон: Не указан")
	assert.Contains(t, h.notifier.texts[0], "Telegram: Скрыт")
}

func TestSearch_NonHistoricSkipsCondition(t *testing.T) {
	for _, kind := range []string{"new_build", "secondary"} {
		t.Run(kind, func(t *testing.T) {
			h := newHarness(t)

			h.say(3, "u", h.menu("search_property"))
			h.say(3, "u", h.menu(kind))
			h.say(3, "u", "1")
			h.say(3, "u", "Север")
			h.say(3, "u", "До 5 млн")

			st, _ := h.state(3)
			assert.Equal(t, StepPhone, st.Step)
		})
	}
}

func TestSearch_InvalidPropertyTypeReprompts(t *testing.T) {
	h := newHarness(t)

	h.say(3, "u", h.menu("search_property"))
	h.say(3, "u", "Дача")

	assert.Equal(t, h.response("choose_option"), h.lastText())
	st, _ := h.state(3)
	assert.Equal(t, StepPropertyType, st.Step)
	assert.Empty(t, st.Form.PropertyType)
}

func TestSearch_NonTextReprompts(t *testing.T) {
	h := newHarness(t)

	h.say(3, "u", h.menu("search_property"))
	h.say(3, "u", h.menu("new_build"))
	h.say(3, "u", "")

	assert.Equal(t, h.response("enter_text"), h.lastText())
	st, _ := h.state(3)
	assert.Equal(t, StepRooms, st.Step)

	h.say(3, "u", "3")
	h.say(3, "u", "Запад")
	h.say(3, "u", "10-20 млн")
	h.say(3, "u", "")
	assert.Equal(t, h.response("phone"), h.lastText())
	assert.Empty(t, h.sink.calls)
}

func TestSearch_CancelAtEveryStep(t *testing.T) {
	steps := []struct {
		name   string
		inputs []string
	}{
		{"property_type", nil},
		{"rooms", []string{"Исторический центр"}},
		{"district", []string{"Исторический центр", "2"}},
		{"budget", []string{"Исторический центр", "2", "Центр"}},
		{"condition", []string{"Исторический центр", "2", "Центр", "5-10 млн"}},
		{"phone", []string{"Исторический центр", "2", "Центр", "5-10 млн", "С ремонтом"}},
	}

	for _, step := range steps {
		for _, label := range []string{"cancel", "back"} {
			t.Run(step.name+"/"+label, func(t *testing.T) {
				h := newHarness(t)

				h.say(5, "u", h.menu("search_property"))
				for _, in := range step.inputs {
					h.say(5, "u", in)
				}

				st, ok := h.state(5)
				require.True(t, ok)
				require.Equal(t, Step(step.name), st.Step)

				h.say(5, "u", h.menu(label))

				_, ok = h.state(5)
				assert.False(t, ok)
				assert.Empty(t, h.sink.calls)
				assert.Empty(t, h.notifier.texts)
				assert.Equal(t, h.response("back_to_menu"), h.lastText())
			})
		}
	}
}

func TestContactFlows(t *testing.T) {
	cases := []struct {
		menu  string
		table string
		title string
	}{
		{"sell_property", sheets.SellTable, "Заявка на продажу:"},
		{"excursion", sheets.ExcursionTable, "Заявка на экскурсию:"},
	}

	for _, tc := range cases {
		t.Run(tc.table, func(t *testing.T) {
			h := newHarness(t)

			h.say(9, "anna", h.menu(tc.menu))
			assert.Equal(t, h.response("phone"), h.lastText())

			h.svc.HandleUpdate(context.Background(), contactUpdate(9, "anna", "+7999"))

			require.Len(t, h.sink.calls, 1)
			assert.Equal(t, tc.table, h.sink.calls[0].table)
			assert.Equal(t, []string{"+7999", "anna.t.me"}, h.sink.calls[0].values)

			require.Len(t, h.notifier.texts, 1)
			assert.Contains(t, h.notifier.texts[0], tc.title)
			assert.Contains(t, h.notifier.texts[0], "Телефон: +7999")
			assert.Equal(t, h.response("success"), h.lastText())
		})
	}
}

func TestContactFlow_CancelDoesNotWrite(t *testing.T) {
	h := newHarness(t)

	h.say(9, "anna", h.menu("excursion"))
	h.say(9, "anna", h.menu("back"))

	assert.Empty(t, h.sink.calls)
	assert.Equal(t, h.response("back_to_menu"), h.lastText())
}

func TestSinkFailure_NoNotification(t *testing.T) {
	h := newHarness(t)
	h.sink.fail = true

	h.say(9, "anna", h.menu("sell_property"))
	h.say(9, "anna", "нет")

	require.Len(t, h.sink.calls, 1)
	assert.Equal(t, []string{Declined, "anna.t.me"}, h.sink.calls[0].values)
	assert.Empty(t, h.notifier.texts)
	assert.Equal(t, h.response("error"), h.lastText())

	_, ok := h.state(9)
	assert.False(t, ok)
}

func TestNotice_EscapesHTML(t *testing.T) {
	h := newHarness(t)

	h.say(3, "u", h.menu("search_property"))
	h.say(3, "u", h.menu("secondary"))
	h.say(3, "u", "<b>5</b>")
	h.say(3, "u", "A&B")
	h.say(3, "u", "1")
	h.say(3, "u", "нет")

	require.Len(t, h.notifier.texts, 1)
	assert.Contains(t, h.notifier.texts[0], "Комнаты: &lt;b&gt;5&lt;/b&gt;")
	assert.Contains(t, h.notifier.texts[0], "Район: A&amp;B")
	assert.Equal(t, "<b>5</b>", h.sink.calls[0].values[1])
}

func TestMenu_UnknownTextAndTopLevelCancel(t *testing.T) {
	h := newHarness(t)

	h.say(2, "u", "привет")
	assert.Equal(t, h.response("choose_menu"), h.lastText())

	h.say(2, "u", h.menu("cancel"))
	assert.Equal(t, h.response("back_to_menu"), h.lastText())

	_, ok := h.state(2)
	assert.False(t, ok)
}

func TestGate_DropsAndResumes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.say(4, "u", h.menu("search_property"))
	h.say(4, "u", h.menu("new_build"))
	h.rec.Reset()

	require.NoError(t, h.gate.SetActive(false))

	h.say(4, "u", "2")
	h.say(11, "new", "/start")

	assert.Zero(t, h.rec.Count())
	n, err := h.registry.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	st, _ := h.state(4)
	assert.Equal(t, StepRooms, st.Step)

	require.NoError(t, h.gate.SetActive(true))

	h.say(4, "u", "2")
	assert.Equal(t, h.response("district"), h.lastText())
	st, _ = h.state(4)
	assert.Equal(t, StepDistrict, st.Step)
}

func TestHandleUpdate_RecoversFromPanic(t *testing.T) {
	h := newHarness(t)
	h.sink.panic = true

	h.say(9, "anna", h.menu("sell_property"))
	assert.NotPanics(t, func() { h.say(9, "anna", "нет") })

	h.sink.panic = false
	h.say(9, "anna", h.menu("sell_property"))
	assert.Equal(t, h.response("phone"), h.lastText())
}

func TestHandleUpdate_IgnoresNonMessages(t *testing.T) {
	h := newHarness(t)

	h.svc.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: 5})
	h.svc.HandleUpdate(context.Background(), tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{ID: "x", From: &tgbotapi.User{ID: 1}},
	})

	assert.Zero(t, h.rec.Count())
}

func TestStart_StopsOnClosedChannel(t *testing.T) {
	h := newHarness(t)

	updates := make(chan tgbotapi.Update, 2)
	updates <- textUpdate(1, "u", "/start")
	updates <- textUpdate(1, "u", h.menu("excursion"))
	close(updates)

	h.svc.Start(context.Background(), updates)

	assert.Equal(t, h.response("phone"), h.lastText())
}
