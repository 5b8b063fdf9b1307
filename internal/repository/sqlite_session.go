package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"checkyourtime/internal/db"
	"checkyourtime/internal/domain"
)

type SQLiteSessionRepo struct {
	db db.DBTX
}

func NewSQLiteSessionRepo(db db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: db}
}

func (r *SQLiteSessionRepo) Create(ctx context.Context, userID int64, startAt time.Time) (int64, error) {
	query := `INSERT INTO sessions (user_telegram_id, start_at) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, query, userID, formatTime(startAt))
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading session id: %w", err)
	}
	return id, nil
}

func (r *SQLiteSessionRepo) GetActive(ctx context.Context, userID int64) (*domain.Session, error) {
	query := `SELECT id, user_telegram_id, start_at, stop_at
		FROM sessions WHERE user_telegram_id = ? AND stop_at IS NULL`
	row := r.db.QueryRowContext(ctx, query, userID)
	return r.scanSession(row)
}

func (r *SQLiteSessionRepo) GetMostRecent(ctx context.Context, userID int64) (*domain.Session, error) {
	query := `SELECT id, user_telegram_id, start_at, stop_at
		FROM sessions WHERE user_telegram_id = ?
		ORDER BY start_at DESC LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, userID)
	return r.scanSession(row)
}

func (r *SQLiteSessionRepo) ListStartedAfter(ctx context.Context, userID int64, since time.Time) ([]*domain.Session, error) {
	query := `SELECT id, user_telegram_id, start_at, stop_at
		FROM sessions WHERE user_telegram_id = ? AND start_at >= ?
		ORDER BY start_at`
	rows, err := r.db.QueryContext(ctx, query, userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := r.scanSessions(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("sessions since %s: %w", formatTime(since), ErrNotFound)
	}
	return sessions, nil
}

func (r *SQLiteSessionRepo) Stop(ctx context.Context, sessionID int64, stopAt time.Time) error {
	query := `UPDATE sessions SET stop_at = ? WHERE id = ? AND stop_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, formatTime(stopAt), sessionID)
	if err != nil {
		return fmt.Errorf("stopping session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("active session %d: %w", sessionID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteSessionRepo) scanSession(row *sql.Row) (*domain.Session, error) {
	var s domain.Session
	var startAtStr string
	var stopAt sql.NullString

	err := row.Scan(&s.ID, &s.UserID, &startAtStr, &stopAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	s.StartedAt, err = time.Parse(timeLayout, startAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing start_at: %w", err)
	}
	s.StoppedAt = parseNullableTime(stopAt)
	return &s, nil
}

func (r *SQLiteSessionRepo) scanSessions(rows *sql.Rows) ([]*domain.Session, error) {
	var sessions []*domain.Session
	for rows.Next() {
		var s domain.Session
		var startAtStr string
		var stopAt sql.NullString

		if err := rows.Scan(&s.ID, &s.UserID, &startAtStr, &stopAt); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}

		var err error
		s.StartedAt, err = time.Parse(timeLayout, startAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing start_at: %w", err)
		}
		s.StoppedAt = parseNullableTime(stopAt)
		sessions = append(sessions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}
