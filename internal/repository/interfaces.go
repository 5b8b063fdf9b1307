package repository

import (
	"context"
	"time"

	"checkyourtime/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	GetIntervalSeconds(ctx context.Context, telegramID int64) (int, error)
	// SetIntervalSeconds returns the number of affected rows (zero when the
	// user does not exist).
	SetIntervalSeconds(ctx context.Context, telegramID int64, seconds int) (int64, error)
}

type CategoryRepo interface {
	CreateBatch(ctx context.Context, userID int64, names []string) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Category, error)
}

type SessionRepo interface {
	Create(ctx context.Context, userID int64, startAt time.Time) (int64, error)
	GetActive(ctx context.Context, userID int64) (*domain.Session, error)
	GetMostRecent(ctx context.Context, userID int64) (*domain.Session, error)
	// ListStartedAfter fails with ErrNotFound when no session matches.
	ListStartedAfter(ctx context.Context, userID int64, since time.Time) ([]*domain.Session, error)
	Stop(ctx context.Context, sessionID int64, stopAt time.Time) error
}

type ActivityRepo interface {
	Create(ctx context.Context, a *domain.Activity) error
	// GetOpen fails with ErrNotFound when the activity is missing or
	// already has a category assigned.
	GetOpen(ctx context.Context, activityID string) (*domain.Activity, error)
	// Close assigns the category to an open activity. ErrNotFound when no
	// open activity matches; ErrConflict when more than one row is touched.
	Close(ctx context.Context, activityID string, categoryID int64) error
	// ListUnfilledByUser fails with ErrNotFound when every activity of the
	// user is already labeled.
	ListUnfilledByUser(ctx context.Context, userID int64) ([]*domain.Activity, error)
	// ListLabeledBySessions returns labeled activities of the given
	// sessions joined with their category names, ordered by start.
	// ErrNotFound when sessionIDs is empty or nothing matches.
	ListLabeledBySessions(ctx context.Context, sessionIDs []int64) ([]*domain.LabeledActivity, error)
}
