// Package bot adapts the tracking core to the telegram transport: it
// routes commands and callback queries in, and sends prompts, stats and
// report files out. All domain decisions live in the service and tracker
// layers; this package only translates.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"checkyourtime/internal/domain"
	"checkyourtime/internal/service"
	"checkyourtime/internal/tracker"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the slice of the telegram client the bot uses; narrowed for tests.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api     API
	tracker *tracker.Manager
	svc     service.TrackerService
	stats   service.StatsService
	access  map[int64]struct{}
	debug   bool
	log     *slog.Logger
}

func New(api API, mgr *tracker.Manager, svc service.TrackerService, stats service.StatsService,
	access map[int64]struct{}, debug bool, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:     api,
		tracker: mgr,
		svc:     svc,
		stats:   stats,
		access:  access,
		debug:   debug,
		log:     logger,
	}
}

// Run long-polls telegram for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if !b.allowed(cq.From.ID) {
			b.sendText(cq.From.ID, msgAccessDenied)
			return
		}
		b.handleCallback(ctx, cq)
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil {
			return
		}
		if !b.allowed(msg.From.ID) {
			b.sendText(msg.From.ID, msgAccessDenied)
			return
		}
		b.handleMessage(ctx, msg)
	}
}

// SampleActivity is the tracker's sampling tick: it opens an activity for
// the elapsed interval and asks the user to label it.
func (b *Bot) SampleActivity(ctx context.Context, userID, sessionID int64, intervalSeconds int) {
	prompt, ok, err := b.svc.Sample(ctx, userID, sessionID, intervalSeconds)
	if err != nil {
		b.log.Error("sampling tick failed", "user_id", userID, "error", err)
		return
	}
	if !ok {
		// Session was stopped after this tick was scheduled.
		return
	}

	kb, err := categoryKeyboard(prompt.Activity.ID, prompt.Categories)
	if err != nil {
		b.log.Error("building category keyboard", "user_id", userID, "error", err)
		return
	}

	text := fmt.Sprintf(msgSamplePrompt,
		prompt.Activity.Start.Local().Format("15:04:05"),
		prompt.Activity.Finish.Local().Format("15:04:05"),
	)
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("sending sample prompt", "user_id", userID, "error", err)
	}
}

// AnnounceRunning tells the user when the first prompt will arrive, once
// the interval-choice grace period has ended.
func (b *Bot) AnnounceRunning(ctx context.Context, userID, sessionID int64, intervalSeconds int) {
	at := b.tracker.Now().Add(time.Duration(intervalSeconds) * time.Second)
	msg := tgbotapi.NewMessage(userID, fmt.Sprintf(msgFirstPrompt, at.Format("15:04:05")))
	msg.ReplyMarkup = navigationKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("announcing session start", "user_id", userID, "error", err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("sending message", "chat_id", chatID, "error", err)
	}
}

func domainUser(u *tgbotapi.User) domain.User {
	return domain.User{
		TelegramID: u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
}
