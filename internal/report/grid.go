// Package report reconciles a sparse set of labeled time intervals against
// a fixed date-by-time-bucket grid and renders the result as a spreadsheet.
package report

import (
	"errors"
	"fmt"
	"time"

	"checkyourtime/internal/domain"
)

// DefaultStep partitions each day into 30-minute buckets.
const DefaultStep = 30 * time.Minute

// ErrInvalidRange rejects a report request whose range is empty or reversed.
var ErrInvalidRange = errors.New("invalid report range")

// Cell is one (date, bucket) slot of the grid. OutOfRange marks buckets
// falling completely outside the requested range; they are still computed,
// only rendered shaded.
type Cell struct {
	Category   string
	OutOfRange bool
}

// Grid is the assembled report: one column per date, one row per
// time-of-day bucket, identical row labels across all columns.
type Grid struct {
	Dates  []time.Time
	Step   time.Duration
	Labels []string
	Cells  [][]Cell // indexed [row][column]
}

// Build computes the full report grid for [t0, t1) over the given labeled
// activities. A non-positive step falls back to DefaultStep.
func Build(t0, t1 time.Time, step time.Duration, activities []*domain.LabeledActivity) (*Grid, error) {
	if !t0.Before(t1) {
		return nil, fmt.Errorf("%s >= %s: %w", t0, t1, ErrInvalidRange)
	}
	if step <= 0 {
		step = DefaultStep
	}

	dates := Dates(t0, t1)
	rows := bucketCount(step)
	cells := make([][]Cell, rows)
	for row := range cells {
		cells[row] = make([]Cell, len(dates))
		for col, day := range dates {
			b0 := day.Add(time.Duration(row) * step)
			b1 := b0.Add(step)

			cell := Cell{Category: LongestOverlapCategory(b0, b1, activities)}
			if b1.Before(t0) || t1.Before(b0) {
				cell.OutOfRange = true
			}
			cells[row][col] = cell
		}
	}

	return &Grid{
		Dates:  dates,
		Step:   step,
		Labels: bucketLabels(step),
		Cells:  cells,
	}, nil
}

// LongestOverlapCategory picks the category whose activities occupy the
// largest share of the bucket [b0, b1]. Activities merely touching a bucket
// boundary contribute zero and are excluded; an empty overlap set yields
// "". Ties resolve to the first category reaching the maximum in the given
// activity order.
func LongestOverlapCategory(b0, b1 time.Time, activities []*domain.LabeledActivity) string {
	totals := make(map[string]time.Duration)
	var best string
	var bestTotal time.Duration

	for _, a := range activities {
		overlap := minTime(a.Finish, b1).Sub(maxTime(a.Start, b0))
		// Sub-microsecond remainders from stored timestamps are dropped
		// before comparison.
		overlap = overlap.Truncate(time.Microsecond)
		if overlap <= 0 {
			continue
		}
		totals[a.CategoryName] += overlap
		if totals[a.CategoryName] > bestTotal {
			best = a.CategoryName
			bestTotal = totals[a.CategoryName]
		}
	}
	return best
}

// bucketCount is ceil(day/step).
func bucketCount(step time.Duration) int {
	day := 24 * time.Hour
	return int((day + step - 1) / step)
}

// bucketLabels renders the HH:MM-HH:MM boundaries of each bucket; the last
// label wraps to 00:00.
func bucketLabels(step time.Duration) []string {
	n := bucketCount(step)
	day := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

	labels := make([]string, n)
	for i := range labels {
		b0 := day.Add(time.Duration(i) * step)
		b1 := b0.Add(step)
		labels[i] = fmt.Sprintf("%s-%s", b0.Format("15:04"), b1.Format("15:04"))
	}
	return labels
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
