package service

import (
	"context"
	"errors"
	"time"

	"checkyourtime/internal/domain"
)

// ErrUnfilledActivities blocks a session start while earlier sampled
// activities are still waiting for a category.
var ErrUnfilledActivities = errors.New("unfilled activities remain")

// ErrInvalidPeriod rejects a stats request that is neither a recognized
// relative range nor the "session" keyword.
var ErrInvalidPeriod = errors.New("invalid stats period")

// SamplePrompt is everything the transport needs to ask "what were you
// doing" for one freshly opened activity.
type SamplePrompt struct {
	Activity   *domain.Activity
	Categories []*domain.Category
}

type TrackerService interface {
	// RegisterUserIfAbsent is idempotent; the first registration also
	// seeds the default category set.
	RegisterUserIfAbsent(ctx context.Context, u domain.User) error

	// GetOrCreateActiveSession returns the open session id, creating the
	// session when none is active. Atomic with respect to the one-active-
	// session invariant.
	GetOrCreateActiveSession(ctx context.Context, userID int64) (sessionID int64, isNew bool, err error)

	// StopActiveSession closes the active session and reports whether
	// anything was closed.
	StopActiveSession(ctx context.Context, userID int64) (bool, error)

	HasActiveSession(ctx context.Context, userID int64) (bool, error)

	// CheckNoUnfilledActivities fails with ErrUnfilledActivities when any
	// sampled activity of the user still lacks a category.
	CheckNoUnfilledActivities(ctx context.Context, userID int64) error

	// StartActivity opens an unlabeled activity spanning the elapsed
	// interval [now-intervalSeconds, now].
	StartActivity(ctx context.Context, sessionID int64, intervalSeconds int) (*domain.Activity, error)

	GetOpenActivity(ctx context.Context, activityID string) (*domain.Activity, error)

	// CloseActivity assigns a category to an open activity and returns the
	// category for echoing back to the user.
	CloseActivity(ctx context.Context, activityID string, categoryID int64) (*domain.Category, error)

	// Sample runs one sampling tick: re-checks the session is still
	// active (ok=false when it is not), opens an activity and collects the
	// category choices to present.
	Sample(ctx context.Context, userID, sessionID int64, intervalSeconds int) (prompt *SamplePrompt, ok bool, err error)

	ListCategories(ctx context.Context, userID int64) ([]*domain.Category, error)
	GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error)

	GetIntervalSeconds(ctx context.Context, userID int64) (int, error)
	SetIntervalSeconds(ctx context.Context, userID int64, seconds int) error
}

// Period selects the time range of a stats request: either a relative
// offset from now or the most recent session.
type Period struct {
	Hours       int
	Days        int
	Weeks       int
	Months      int
	LastSession bool
}

// StatsResult carries the aggregated stats plus the raw labeled activities
// used to build the spreadsheet report for the same range.
type StatsResult struct {
	From        time.Time
	To          time.Time
	PeriodLabel string
	Stats       []domain.CategoryStat
	Activities  []*domain.LabeledActivity
}

type StatsService interface {
	// ParsePeriod decodes a stats-period payload ("session" or a JSON
	// relative range). Fails with ErrInvalidPeriod on anything else.
	ParsePeriod(payload string) (Period, error)

	// Collect gathers labeled activities for the period and aggregates
	// per-category totals. Fails with repository.ErrNotFound when the
	// period holds no data.
	Collect(ctx context.Context, userID int64, p Period, now time.Time) (*StatsResult, error)
}
