package repository

import (
	"database/sql"
	"time"
)

// Timestamps are stored as UTC RFC3339 strings; sub-second precision is
// dropped, which the report math tolerates.
const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseNullableTime converts a scanned nullable column into a *time.Time.
// NULL, empty, and unparseable values all map to nil.
func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableID converts a scanned nullable integer column into an id pointer.
func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
