package domain

import "time"

// Activity is one sampled interval within a session. The sampling tick
// records it with a nil CategoryID ("open"); the user's answer assigns the
// category exactly once.
type Activity struct {
	ID         string
	SessionID  int64
	Start      time.Time
	Finish     time.Time
	CategoryID *int64
}

func (a *Activity) Open() bool {
	return a.CategoryID == nil
}

func (a *Activity) Duration() time.Duration {
	return a.Finish.Sub(a.Start)
}

// LabeledActivity is an activity joined with the name of its assigned
// category, as returned by the timesheet report queries.
type LabeledActivity struct {
	Activity
	CategoryName string
}
