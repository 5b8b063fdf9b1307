package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDates_SingleDay(t *testing.T) {
	t0 := time.Date(2021, 2, 2, 9, 15, 0, 0, time.UTC)
	t1 := time.Date(2021, 2, 2, 18, 45, 0, 0, time.UTC)

	dates := Dates(t0, t1)
	require.Len(t, dates, 1)
	assert.Equal(t, day(2021, 2, 2), dates[0])
}

func TestDates_SpanningDays(t *testing.T) {
	t0 := time.Date(2021, 2, 2, 23, 0, 0, 0, time.UTC)
	t1 := time.Date(2021, 2, 5, 1, 0, 0, 0, time.UTC)

	dates := Dates(t0, t1)
	assert.Equal(t, []time.Time{
		day(2021, 2, 2), day(2021, 2, 3), day(2021, 2, 4), day(2021, 2, 5),
	}, dates)
}

func TestDates_AcrossMonthBoundary(t *testing.T) {
	t0 := time.Date(2021, 1, 30, 12, 0, 0, 0, time.UTC)
	t1 := time.Date(2021, 2, 2, 12, 0, 0, 0, time.UTC)

	dates := Dates(t0, t1)
	assert.Equal(t, []time.Time{
		day(2021, 1, 30), day(2021, 1, 31), day(2021, 2, 1), day(2021, 2, 2),
	}, dates)
}

func TestDates_MidnightBounds(t *testing.T) {
	// Bounds already at midnight still count their own day.
	dates := Dates(day(2021, 2, 2), day(2021, 2, 3))
	assert.Equal(t, []time.Time{day(2021, 2, 2), day(2021, 2, 3)}, dates)
}
