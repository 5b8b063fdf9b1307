package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkyourtime/internal/db"
	"checkyourtime/internal/domain"
	"checkyourtime/internal/repository"
	"github.com/google/uuid"
)

type trackerService struct {
	users      repository.UserRepo
	categories repository.CategoryRepo
	sessions   repository.SessionRepo
	activities repository.ActivityRepo
	uow        db.UnitOfWork
	observer   UseCaseObserver
}

func NewTrackerService(
	users repository.UserRepo,
	categories repository.CategoryRepo,
	sessions repository.SessionRepo,
	activities repository.ActivityRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) TrackerService {
	return &trackerService{
		users:      users,
		categories: categories,
		sessions:   sessions,
		activities: activities,
		uow:        uow,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *trackerService) RegisterUserIfAbsent(ctx context.Context, u domain.User) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txUsers := repository.NewSQLiteUserRepo(tx)

		_, err := txUsers.GetByTelegramID(ctx, u.TelegramID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if u.IntervalSeconds == 0 {
			u.IntervalSeconds = domain.DefaultIntervalSeconds
		}
		u.CreatedAt = time.Now().UTC()
		if err := txUsers.Create(ctx, &u); err != nil {
			return err
		}
		return repository.NewSQLiteCategoryRepo(tx).CreateBatch(ctx, u.TelegramID, domain.DefaultCategoryNames)
	})
}

func (s *trackerService) GetOrCreateActiveSession(ctx context.Context, userID int64) (int64, bool, error) {
	started := time.Now()
	var sessionID int64
	var isNew bool

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSessions := repository.NewSQLiteSessionRepo(tx)

		existing, err := txSessions.GetActive(ctx, userID)
		if err == nil {
			sessionID, isNew = existing.ID, false
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		sessionID, err = txSessions.Create(ctx, userID, time.Now().UTC())
		if err != nil {
			return err
		}
		isNew = true
		return nil
	})

	// A concurrent start can slip between our read and insert; the partial
	// unique index rejects the second insert, so fall back to the winner's
	// session.
	if err != nil && isUniqueViolation(err) {
		existing, getErr := s.sessions.GetActive(ctx, userID)
		if getErr != nil {
			return 0, false, fmt.Errorf("re-reading active session: %w", getErr)
		}
		sessionID, isNew, err = existing.ID, false, nil
	}

	s.observe(ctx, "tracker.get_or_create_session", started, err, map[string]any{
		"user_id": userID, "is_new": isNew,
	})
	return sessionID, isNew, err
}

func (s *trackerService) StopActiveSession(ctx context.Context, userID int64) (bool, error) {
	started := time.Now()
	var stopped bool

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSessions := repository.NewSQLiteSessionRepo(tx)

		active, err := txSessions.GetActive(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := txSessions.Stop(ctx, active.ID, time.Now().UTC()); err != nil {
			return err
		}
		stopped = true
		return nil
	})

	s.observe(ctx, "tracker.stop_session", started, err, map[string]any{
		"user_id": userID, "stopped": stopped,
	})
	return stopped, err
}

func (s *trackerService) HasActiveSession(ctx context.Context, userID int64) (bool, error) {
	_, err := s.sessions.GetActive(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *trackerService) CheckNoUnfilledActivities(ctx context.Context, userID int64) error {
	_, err := s.activities.ListUnfilledByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return ErrUnfilledActivities
}

func (s *trackerService) StartActivity(ctx context.Context, sessionID int64, intervalSeconds int) (*domain.Activity, error) {
	finish := time.Now().UTC().Truncate(time.Second)
	a := &domain.Activity{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Start:     finish.Add(-time.Duration(intervalSeconds) * time.Second),
		Finish:    finish,
	}
	if err := s.activities.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *trackerService) GetOpenActivity(ctx context.Context, activityID string) (*domain.Activity, error) {
	return s.activities.GetOpen(ctx, activityID)
}

func (s *trackerService) CloseActivity(ctx context.Context, activityID string, categoryID int64) (*domain.Category, error) {
	started := time.Now()

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txActivities := repository.NewSQLiteActivityRepo(tx)

		if _, err := txActivities.GetOpen(ctx, activityID); err != nil {
			return err
		}
		return txActivities.Close(ctx, activityID, categoryID)
	})
	s.observe(ctx, "tracker.close_activity", started, err, map[string]any{
		"activity_id": activityID, "category_id": categoryID,
	})
	if err != nil {
		return nil, err
	}

	return s.categories.GetByID(ctx, categoryID)
}

func (s *trackerService) Sample(ctx context.Context, userID, sessionID int64, intervalSeconds int) (*SamplePrompt, bool, error) {
	// The user may have raced a stop against this tick; a tick scheduled
	// before the stop must not open an activity after it.
	active, err := s.HasActiveSession(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !active {
		return nil, false, nil
	}

	activity, err := s.StartActivity(ctx, sessionID, intervalSeconds)
	if err != nil {
		return nil, false, err
	}
	categories, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return &SamplePrompt{Activity: activity, Categories: categories}, true, nil
}

func (s *trackerService) ListCategories(ctx context.Context, userID int64) ([]*domain.Category, error) {
	return s.categories.ListByUser(ctx, userID)
}

func (s *trackerService) GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error) {
	return s.categories.GetByID(ctx, categoryID)
}

func (s *trackerService) GetIntervalSeconds(ctx context.Context, userID int64) (int, error) {
	return s.users.GetIntervalSeconds(ctx, userID)
}

func (s *trackerService) SetIntervalSeconds(ctx context.Context, userID int64, seconds int) error {
	affected, err := s.users.SetIntervalSeconds(ctx, userID, seconds)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", userID, repository.ErrNotFound)
	}
	return nil
}

func (s *trackerService) observe(ctx context.Context, name string, started time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
		StartedAt: started,
	})
}

// isUniqueViolation detects the SQLite unique-constraint error raised by
// idx_sessions_one_active.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
