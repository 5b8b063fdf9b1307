package domain

import "time"

// DefaultIntervalSeconds is the sampling interval assigned to newly
// registered users (15 minutes).
const DefaultIntervalSeconds = 15 * 60

type User struct {
	TelegramID      int64
	IntervalSeconds int
	FirstName       string
	LastName        string
	CreatedAt       time.Time
}
