package bot

import (
	"context"
	"testing"
	"time"

	"checkyourtime/internal/domain"
	"checkyourtime/internal/repository"
	"checkyourtime/internal/service"
	"checkyourtime/internal/testutil"
	"checkyourtime/internal/tracker"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records everything the bot sends.
type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

// lastEdit returns the most recent message edit the bot issued.
func (f *fakeAPI) lastEdit(t *testing.T) tgbotapi.EditMessageTextConfig {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if edit, ok := f.sent[i].(tgbotapi.EditMessageTextConfig); ok {
			return edit
		}
	}
	t.Fatal("no message edit was sent")
	return tgbotapi.EditMessageTextConfig{}
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI, service.TrackerService) {
	t.Helper()
	database := testutil.NewTestDB(t)

	svc := service.NewTrackerService(
		repository.NewSQLiteUserRepo(database),
		repository.NewSQLiteCategoryRepo(database),
		repository.NewSQLiteSessionRepo(database),
		repository.NewSQLiteActivityRepo(database),
		testutil.NewTestUoW(database),
	)
	stats := service.NewStatsService(
		repository.NewSQLiteSessionRepo(database),
		repository.NewSQLiteActivityRepo(database),
	)

	api := &fakeAPI{}
	var b *Bot
	mgr := tracker.NewManager(svc, tracker.SystemClock{}, time.Second,
		func(ctx context.Context, userID, sessionID int64, intervalSeconds int) {
			b.SampleActivity(ctx, userID, sessionID, intervalSeconds)
		},
		func(ctx context.Context, userID, sessionID int64, intervalSeconds int) {
			b.AnnounceRunning(ctx, userID, sessionID, intervalSeconds)
		}, nil)
	b = New(api, mgr, svc, stats, nil, false, nil)
	return b, api, svc
}

func callbackFrom(userID int64, promptText, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: userID, FirstName: "Test"},
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 10,
			Chat:      &tgbotapi.Chat{ID: userID},
			Text:      promptText,
		},
	}
}

func TestHandleStop_NothingActive(t *testing.T) {
	b, api, _ := newTestBot(t)
	ctx := context.Background()

	b.handleStop(ctx, &tgbotapi.Message{
		From: &tgbotapi.User{ID: 42, FirstName: "Test"},
	})

	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, msgNothingToStop, msg.Text)
}

func TestHandleCategoryChosen(t *testing.T) {
	b, api, svc := newTestBot(t)
	ctx := context.Background()

	user := testutil.NewTestUser()
	require.NoError(t, svc.RegisterUserIfAbsent(ctx, *user))
	sessionID, _, err := svc.GetOrCreateActiveSession(ctx, user.TelegramID)
	require.NoError(t, err)
	activity, err := svc.StartActivity(ctx, sessionID, 900)
	require.NoError(t, err)
	categories, err := svc.ListCategories(ctx, user.TelegramID)
	require.NoError(t, err)

	payload, err := encodeActivityPayload(activity.ID, categories[0].ID)
	require.NoError(t, err)
	prompt := "What were you doing between 09:00:00 - 09:15:00?"

	b.handleCallback(ctx, callbackFrom(user.TelegramID, prompt, payload))

	require.Len(t, api.requests, 1, "callback query is acknowledged")
	edit := api.lastEdit(t)
	assert.Equal(t, prompt+"\nFilled: "+categories[0].Name, edit.Text)

	// Answering the same prompt again hits an already-filled slot.
	b.handleCallback(ctx, callbackFrom(user.TelegramID, prompt, payload))
	edit = api.lastEdit(t)
	assert.Equal(t, prompt+msgSlotFilled, edit.Text)
}

func TestHandleIntervalChosen(t *testing.T) {
	b, api, svc := newTestBot(t)
	ctx := context.Background()

	user := testutil.NewTestUser()
	require.NoError(t, svc.RegisterUserIfAbsent(ctx, *user))

	b.handleCallback(ctx, callbackFrom(user.TelegramID, msgChooseInterval, "1200"))

	seconds, err := svc.GetIntervalSeconds(ctx, user.TelegramID)
	require.NoError(t, err)
	assert.Equal(t, 1200, seconds)

	edit := api.lastEdit(t)
	assert.Contains(t, edit.Text, "20:00")
}

func TestHandleStatsRequested_NoData(t *testing.T) {
	b, api, svc := newTestBot(t)
	ctx := context.Background()

	user := testutil.NewTestUser()
	require.NoError(t, svc.RegisterUserIfAbsent(ctx, *user))

	b.handleCallback(ctx, callbackFrom(user.TelegramID, msgChooseStats, `{"hours": 2}`))

	edit := api.lastEdit(t)
	assert.Equal(t, msgNoStatsFound, edit.Text)
}

func TestHandleStatsRequested_BadPayload(t *testing.T) {
	b, api, _ := newTestBot(t)
	ctx := context.Background()

	b.handleCallback(ctx, callbackFrom(42, msgChooseStats, "garbage"))

	edit := api.lastEdit(t)
	assert.Equal(t, msgBadPeriod, edit.Text)
}

func TestRenderStats(t *testing.T) {
	res := &service.StatsResult{
		PeriodLabel: "the last session",
		Stats: []domain.CategoryStat{
			{Category: "Work", Total: time.Hour, Percent: 66.666},
			{Category: "Food", Total: 30 * time.Minute, Percent: 33.333},
		},
	}

	out := renderStats(res)
	assert.Contains(t, out, "Your stats for the last session:")
	assert.Contains(t, out, "Work")
	assert.Contains(t, out, "1h0m0s")
	assert.Contains(t, out, "(66.67%)")
	assert.Contains(t, out, "(33.33%)")
}
