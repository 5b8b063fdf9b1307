package domain

import "time"

// Session is one open-ended time-tracking period. A session with a nil
// StoppedAt is active; at most one active session exists per user.
type Session struct {
	ID        int64
	UserID    int64
	StartedAt time.Time
	StoppedAt *time.Time
}

func (s *Session) Active() bool {
	return s.StoppedAt == nil
}
