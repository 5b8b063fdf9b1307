package repository

import (
	"context"
	"database/sql"
	"fmt"

	"checkyourtime/internal/db"
	"checkyourtime/internal/domain"
)

type SQLiteCategoryRepo struct {
	db db.DBTX
}

func NewSQLiteCategoryRepo(db db.DBTX) *SQLiteCategoryRepo {
	return &SQLiteCategoryRepo{db: db}
}

func (r *SQLiteCategoryRepo) CreateBatch(ctx context.Context, userID int64, names []string) error {
	query := `INSERT INTO categories (user_telegram_id, name) VALUES (?, ?)`
	for _, name := range names {
		if _, err := r.db.ExecContext(ctx, query, userID, name); err != nil {
			return fmt.Errorf("inserting category %q: %w", name, err)
		}
	}
	return nil
}

func (r *SQLiteCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT id, user_telegram_id, name FROM categories WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var c domain.Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning category: %w", err)
	}
	return &c, nil
}

func (r *SQLiteCategoryRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.Category, error) {
	query := `SELECT id, user_telegram_id, name FROM categories WHERE user_telegram_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category row: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}
	return categories, nil
}
