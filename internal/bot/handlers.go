package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"checkyourtime/internal/report"
	"checkyourtime/internal/repository"
	"checkyourtime/internal/service"
	"checkyourtime/internal/tracker"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg)
		case "stop":
			b.handleStop(ctx, msg)
		case "help":
			b.sendText(msg.From.ID, msgWelcome)
		case "list":
			b.handleListCategories(ctx, msg)
		case "buttons":
			b.handleButtons(msg)
		case "step":
			b.handleChangeInterval(msg)
		}
		return
	}

	// Reply-keyboard buttons arrive as plain text.
	switch strings.ToLower(msg.Text) {
	case "start":
		b.handleStart(ctx, msg)
	case "stop":
		b.handleStop(ctx, msg)
	case "change interval":
		b.handleChangeInterval(msg)
	case "statistic >>":
		b.handleStatsMenu(msg)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	user := domainUser(msg.From)

	res, err := b.tracker.StartSession(ctx, user)
	switch {
	case errors.Is(err, service.ErrUnfilledActivities):
		b.sendText(user.TelegramID, msgUnfilled)
		return
	case errors.Is(err, tracker.ErrSessionOpen):
		b.sendText(user.TelegramID, msgSessionOpen)
		return
	case err != nil:
		b.log.Error("starting session", "user_id", user.TelegramID, "error", err)
		b.sendText(user.TelegramID, strings.TrimSpace(msgServerError))
		return
	}

	b.sendText(user.TelegramID, fmt.Sprintf(msgCurrentInterval,
		mmss(res.IntervalSeconds), int(res.GracePeriod.Seconds())))
	b.handleChangeInterval(msg)

	b.tracker.RunTimer(user.TelegramID, res.SessionID)
	b.log.Info("session opened", "user_id", user.TelegramID, "session_id", res.SessionID)
}

func (b *Bot) handleStop(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	stopped, err := b.tracker.StopSession(ctx, userID)
	if err != nil {
		b.log.Error("stopping session", "user_id", userID, "error", err)
		b.sendText(userID, strings.TrimSpace(msgServerError))
		return
	}
	if stopped {
		b.sendText(userID, msgStopped)
	} else {
		b.sendText(userID, msgNothingToStop)
	}
}

func (b *Bot) handleListCategories(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	categories, err := b.svc.ListCategories(ctx, userID)
	if err != nil {
		b.log.Error("listing categories", "user_id", userID, "error", err)
		b.sendText(userID, strings.TrimSpace(msgServerError))
		return
	}

	var names []string
	for _, c := range categories {
		names = append(names, c.Name)
	}
	b.sendText(userID, "Categories:\n"+strings.Join(names, "\n"))
}

func (b *Bot) handleButtons(msg *tgbotapi.Message) {
	out := tgbotapi.NewMessage(msg.From.ID, "Controls")
	out.ReplyMarkup = navigationKeyboard()
	if _, err := b.api.Send(out); err != nil {
		b.log.Error("sending control keyboard", "user_id", msg.From.ID, "error", err)
	}
}

func (b *Bot) handleChangeInterval(msg *tgbotapi.Message) {
	out := tgbotapi.NewMessage(msg.From.ID, msgChooseInterval)
	out.ReplyMarkup = intervalKeyboard(b.debug)
	if _, err := b.api.Send(out); err != nil {
		b.log.Error("sending interval keyboard", "user_id", msg.From.ID, "error", err)
	}
}

func (b *Bot) handleStatsMenu(msg *tgbotapi.Message) {
	out := tgbotapi.NewMessage(msg.From.ID, msgChooseStats)
	out.ReplyMarkup = statsKeyboard()
	if _, err := b.api.Send(out); err != nil {
		b.log.Error("sending stats keyboard", "user_id", msg.From.ID, "error", err)
	}
}

// handleCallback routes inline-keyboard answers. Interval and stats
// callbacks are recognized by the prompt text they answer, category
// callbacks by their activity-bound payload.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Acknowledge first so the client stops its loading animation.
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.log.Error("answering callback", "user_id", cq.From.ID, "error", err)
	}
	if cq.Message == nil {
		return
	}

	switch {
	case cq.Message.Text == msgChooseInterval:
		b.handleIntervalChosen(ctx, cq)
	case strings.Contains(cq.Data, "act_id"):
		b.handleCategoryChosen(ctx, cq)
	case cq.Message.Text == msgChooseStats:
		b.handleStatsRequested(ctx, cq)
	}
}

func (b *Bot) handleIntervalChosen(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	user := domainUser(cq.From)

	seconds, err := strconv.Atoi(cq.Data)
	if err != nil || seconds <= 0 {
		b.log.Error("bad interval payload", "user_id", user.TelegramID, "data", cq.Data)
		return
	}

	if err := b.tracker.SetInterval(ctx, user, seconds); err != nil {
		b.log.Error("setting interval", "user_id", user.TelegramID, "error", err)
		b.sendText(user.TelegramID, strings.TrimSpace(msgServerError))
		return
	}
	// If the session is still in its grace period, apply the new interval
	// to the first sampling wait right away.
	b.tracker.CancelGraceWait(user.TelegramID)

	b.editMessage(cq, cq.Message.Text+fmt.Sprintf(msgIntervalSet, mmss(seconds)))
}

func (b *Bot) handleCategoryChosen(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	userID := cq.From.ID

	payload, err := decodeActivityPayload(cq.Data)
	if err != nil {
		b.log.Error("bad category payload", "user_id", userID, "data", cq.Data, "error", err)
		return
	}

	var reply string
	category, err := b.svc.CloseActivity(ctx, payload.ActivityID, payload.CategoryID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		reply = cq.Message.Text + msgSlotFilled
	case errors.Is(err, repository.ErrConflict):
		b.log.Error("activity close conflict", "user_id", userID,
			"activity_id", payload.ActivityID, "error", err)
		reply = cq.Message.Text + msgServerError
	case err != nil:
		b.log.Error("closing activity", "user_id", userID,
			"activity_id", payload.ActivityID, "error", err)
		reply = cq.Message.Text + msgServerError
	default:
		reply = cq.Message.Text + fmt.Sprintf(msgFilledAs, category.Name)
	}

	b.editMessage(cq, reply)
}

func (b *Bot) handleStatsRequested(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	userID := cq.From.ID

	period, err := b.stats.ParsePeriod(cq.Data)
	if err != nil {
		b.editMessage(cq, msgBadPeriod)
		return
	}

	res, err := b.stats.Collect(ctx, userID, period, b.tracker.Now())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		b.editMessage(cq, msgNoStatsFound)
		return
	case err != nil:
		b.log.Error("collecting stats", "user_id", userID, "error", err)
		b.editMessage(cq, strings.TrimSpace(msgServerError))
		return
	}

	b.editMessage(cq, renderStats(res))

	grid, err := report.Build(res.From, res.To, report.DefaultStep, res.Activities)
	if err != nil {
		b.log.Error("building report grid", "user_id", userID, "error", err)
		return
	}
	raw, err := grid.WriteXLSX()
	if err != nil {
		b.log.Error("rendering report", "user_id", userID, "error", err)
		return
	}

	doc := tgbotapi.NewDocument(userID, tgbotapi.FileBytes{
		Name:  report.Filename(res.From, res.To),
		Bytes: raw,
	})
	if _, err := b.api.Send(doc); err != nil {
		b.log.Error("sending report file", "user_id", userID, "error", err)
	}
}

// editMessage replaces the prompt's text and drops its inline keyboard.
func (b *Bot) editMessage(cq *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, text)
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("editing message", "chat_id", cq.Message.Chat.ID, "error", err)
	}
}

func renderStats(res *service.StatsResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your stats for %s:\n", res.PeriodLabel)
	for _, st := range res.Stats {
		fmt.Fprintf(&sb, "%-15s %s (%.2f%%)\n", st.Category, st.Total.String(), st.Percent)
	}
	return strings.TrimRight(sb.String(), "\n")
}
