package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"checkyourtime/internal/db"
	"checkyourtime/internal/domain"
)

// SQLiteUserRepo implements UserRepo over a DBTX so it composes into
// unit-of-work transactions.
type SQLiteUserRepo struct {
	db db.DBTX
}

func NewSQLiteUserRepo(db db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

func (r *SQLiteUserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (telegram_id, interval_seconds, first_name, last_name, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		u.TelegramID,
		u.IntervalSeconds,
		u.FirstName,
		u.LastName,
		formatTime(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	query := `SELECT telegram_id, interval_seconds, first_name, last_name, created_at
		FROM users WHERE telegram_id = ?`
	row := r.db.QueryRowContext(ctx, query, telegramID)

	var u domain.User
	var createdAtStr string
	err := row.Scan(&u.TelegramID, &u.IntervalSeconds, &u.FirstName, &u.LastName, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %d: %w", telegramID, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.CreatedAt, err = time.Parse(timeLayout, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &u, nil
}

func (r *SQLiteUserRepo) GetIntervalSeconds(ctx context.Context, telegramID int64) (int, error) {
	query := `SELECT interval_seconds FROM users WHERE telegram_id = ?`
	row := r.db.QueryRowContext(ctx, query, telegramID)

	var seconds int
	if err := row.Scan(&seconds); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("user %d: %w", telegramID, ErrNotFound)
		}
		return 0, fmt.Errorf("scanning interval: %w", err)
	}
	return seconds, nil
}

func (r *SQLiteUserRepo) SetIntervalSeconds(ctx context.Context, telegramID int64, seconds int) (int64, error) {
	query := `UPDATE users SET interval_seconds = ? WHERE telegram_id = ?`
	res, err := r.db.ExecContext(ctx, query, seconds, telegramID)
	if err != nil {
		return 0, fmt.Errorf("updating interval: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected, nil
}
