package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"checkyourtime/internal/db"
	"checkyourtime/internal/domain"
)

type SQLiteActivityRepo struct {
	db db.DBTX
}

func NewSQLiteActivityRepo(db db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: db}
}

func (r *SQLiteActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	query := `INSERT INTO timesheet (activity_id, session_id, start, finish, category_id)
		VALUES (?, ?, ?, ?, NULL)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.SessionID,
		formatTime(a.Start),
		formatTime(a.Finish),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) GetOpen(ctx context.Context, activityID string) (*domain.Activity, error) {
	query := `SELECT activity_id, session_id, start, finish, category_id
		FROM timesheet WHERE activity_id = ? AND category_id IS NULL`
	row := r.db.QueryRowContext(ctx, query, activityID)

	a, err := scanActivity(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("open activity %s: %w", activityID, ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

// Close re-verifies the open precondition in the WHERE clause, so a
// concurrent close of the same activity makes exactly one caller win.
func (r *SQLiteActivityRepo) Close(ctx context.Context, activityID string, categoryID int64) error {
	query := `UPDATE timesheet SET category_id = ?
		WHERE activity_id = ? AND category_id IS NULL`
	res, err := r.db.ExecContext(ctx, query, categoryID, activityID)
	if err != nil {
		return fmt.Errorf("closing activity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	switch {
	case affected == 0:
		return fmt.Errorf("open activity %s: %w", activityID, ErrNotFound)
	case affected > 1:
		// activity_id is the primary key; more than one row means the
		// store lost id uniqueness.
		return fmt.Errorf("closing activity %s touched %d rows: %w", activityID, affected, ErrConflict)
	}
	return nil
}

func (r *SQLiteActivityRepo) ListUnfilledByUser(ctx context.Context, userID int64) ([]*domain.Activity, error) {
	query := `SELECT a.activity_id, a.session_id, a.start, a.finish, a.category_id
		FROM timesheet a
		JOIN sessions s ON s.id = a.session_id AND s.user_telegram_id = ?
		WHERE a.category_id IS NULL
		ORDER BY a.start`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing unfilled activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	if len(activities) == 0 {
		return nil, fmt.Errorf("unfilled activities for user %d: %w", userID, ErrNotFound)
	}
	return activities, nil
}

func (r *SQLiteActivityRepo) ListLabeledBySessions(ctx context.Context, sessionIDs []int64) ([]*domain.LabeledActivity, error) {
	if len(sessionIDs) == 0 {
		return nil, fmt.Errorf("no sessions given: %w", ErrNotFound)
	}

	placeholders := strings.Repeat("?,", len(sessionIDs))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`SELECT a.activity_id, a.session_id, a.start, a.finish, a.category_id, c.name
		FROM timesheet a
		JOIN categories c ON a.category_id IS NOT NULL AND a.category_id = c.id
		WHERE a.session_id IN (%s)
		ORDER BY a.start`, placeholders)

	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing labeled activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.LabeledActivity
	for rows.Next() {
		var la domain.LabeledActivity
		var startStr, finishStr string
		var categoryID sql.NullInt64

		if err := rows.Scan(&la.ID, &la.SessionID, &startStr, &finishStr, &categoryID, &la.CategoryName); err != nil {
			return nil, fmt.Errorf("scanning labeled activity: %w", err)
		}
		if err := parseActivityTimes(&la.Activity, startStr, finishStr); err != nil {
			return nil, err
		}
		la.CategoryID = nullableID(categoryID)
		activities = append(activities, &la)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating labeled activities: %w", err)
	}
	if len(activities) == 0 {
		return nil, fmt.Errorf("labeled activities for sessions: %w", ErrNotFound)
	}
	return activities, nil
}

// scanActivity scans one activity row through the given Scan function so it
// serves both *sql.Row and *sql.Rows.
func scanActivity(scan func(dest ...any) error) (*domain.Activity, error) {
	var a domain.Activity
	var startStr, finishStr string
	var categoryID sql.NullInt64

	if err := scan(&a.ID, &a.SessionID, &startStr, &finishStr, &categoryID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning activity: %w", err)
	}
	if err := parseActivityTimes(&a, startStr, finishStr); err != nil {
		return nil, err
	}
	a.CategoryID = nullableID(categoryID)
	return &a, nil
}

func parseActivityTimes(a *domain.Activity, startStr, finishStr string) error {
	var err error
	a.Start, err = time.Parse(timeLayout, startStr)
	if err != nil {
		return fmt.Errorf("parsing start: %w", err)
	}
	a.Finish, err = time.Parse(timeLayout, finishStr)
	if err != nil {
		return fmt.Errorf("parsing finish: %w", err)
	}
	return nil
}
