package testutil

import (
	"sync/atomic"
	"time"

	"checkyourtime/internal/domain"
	"github.com/google/uuid"
)

var testUserIDCounter atomic.Int64

// User options
type UserOption func(*domain.User)

func WithInterval(seconds int) UserOption {
	return func(u *domain.User) {
		u.IntervalSeconds = seconds
	}
}

func WithName(first, last string) UserOption {
	return func(u *domain.User) {
		u.FirstName = first
		u.LastName = last
	}
}

// NewTestUser builds a user with a unique telegram id and the default
// sampling interval.
func NewTestUser(opts ...UserOption) *domain.User {
	u := &domain.User{
		TelegramID:      100000 + testUserIDCounter.Add(1),
		IntervalSeconds: domain.DefaultIntervalSeconds,
		FirstName:       "Test",
		CreatedAt:       time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Activity options
type ActivityOption func(*domain.Activity)

func WithSpan(start, finish time.Time) ActivityOption {
	return func(a *domain.Activity) {
		a.Start = start
		a.Finish = finish
	}
}

// NewTestActivity builds an open activity covering the last interval.
func NewTestActivity(sessionID int64, intervalSeconds int, opts ...ActivityOption) *domain.Activity {
	finish := time.Now().UTC()
	a := &domain.Activity{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Start:     finish.Add(-time.Duration(intervalSeconds) * time.Second),
		Finish:    finish,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Labeled builds a labeled activity for report tests; start and finish are
// clock times on the given day.
func Labeled(day time.Time, startHour, startMin, endHour, endMin int, category string) *domain.LabeledActivity {
	return &domain.LabeledActivity{
		Activity: domain.Activity{
			ID:    uuid.New().String(),
			Start: time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, time.UTC),
			Finish: time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, time.UTC),
		},
		CategoryName: category,
	}
}
