package bot

import (
	"strconv"

	"checkyourtime/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxRowButtons caps how many category buttons share one keyboard row.
const maxRowButtons = 3

// navigationKeyboard is the persistent reply keyboard with the main
// controls.
func navigationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Start"),
			tgbotapi.NewKeyboardButton("Stop"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Change interval"),
			tgbotapi.NewKeyboardButton("Statistic >>"),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// intervalKeyboard offers the sampling-interval presets; debug mode adds
// short test intervals.
func intervalKeyboard(debug bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("15 minutes", strconv.Itoa(15*60)),
			tgbotapi.NewInlineKeyboardButtonData("20 minutes", strconv.Itoa(20*60)),
			tgbotapi.NewInlineKeyboardButtonData("30 minutes", strconv.Itoa(30*60)),
		),
	}
	if debug {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("5 seconds (test)", "5"),
			tgbotapi.NewInlineKeyboardButtonData("10 seconds (test)", "10"),
			tgbotapi.NewInlineKeyboardButtonData("30 seconds (test)", "30"),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// statsKeyboard offers the stats periods; payloads are either a JSON
// relative range or the "session" keyword.
func statsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Last 2 hours", `{"hours": 2}`),
			tgbotapi.NewInlineKeyboardButtonData("Last 24 hours", `{"days": 1}`),
			tgbotapi.NewInlineKeyboardButtonData("Last 7 days", `{"weeks": 1}`),
			tgbotapi.NewInlineKeyboardButtonData("Last month", `{"months": 1}`),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Last session", "session"),
		),
	)
}

// categoryKeyboard lays the user's categories out in rows of up to
// maxRowButtons, each button carrying the activity-bound payload.
func categoryKeyboard(activityID string, categories []*domain.Category) (tgbotapi.InlineKeyboardMarkup, error) {
	var rows [][]tgbotapi.InlineKeyboardButton
	row := make([]tgbotapi.InlineKeyboardButton, 0, maxRowButtons)

	for _, c := range categories {
		payload, err := encodeActivityPayload(activityID, c.ID)
		if err != nil {
			return tgbotapi.InlineKeyboardMarkup{}, err
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Name, payload))
		if len(row) == maxRowButtons {
			rows = append(rows, row)
			row = make([]tgbotapi.InlineKeyboardButton, 0, maxRowButtons)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), nil
}
