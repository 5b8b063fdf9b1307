package domain

import "time"

// CategoryStat aggregates the total labeled time of one category over a
// stats period, with its share of the period's labeled time.
type CategoryStat struct {
	Category string
	Total    time.Duration
	Percent  float64
}
