package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"checkyourtime/internal/domain"
	"checkyourtime/internal/repository"
)

type statsService struct {
	sessions   repository.SessionRepo
	activities repository.ActivityRepo
}

func NewStatsService(sessions repository.SessionRepo, activities repository.ActivityRepo) StatsService {
	return &statsService{sessions: sessions, activities: activities}
}

// relativePeriod is the JSON shape of a relative stats-period payload,
// e.g. {"hours":2} or {"months":1}.
type relativePeriod struct {
	Hours  int `json:"hours"`
	Days   int `json:"days"`
	Weeks  int `json:"weeks"`
	Months int `json:"months"`
}

func (s *statsService) ParsePeriod(payload string) (Period, error) {
	if payload == "session" {
		return Period{LastSession: true}, nil
	}

	var rel relativePeriod
	if err := json.Unmarshal([]byte(payload), &rel); err != nil {
		return Period{}, fmt.Errorf("period %q: %w", payload, ErrInvalidPeriod)
	}
	p := Period{Hours: rel.Hours, Days: rel.Days, Weeks: rel.Weeks, Months: rel.Months}
	if p.Hours == 0 && p.Days == 0 && p.Weeks == 0 && p.Months == 0 {
		return Period{}, fmt.Errorf("period %q: %w", payload, ErrInvalidPeriod)
	}
	return p, nil
}

func (s *statsService) Collect(ctx context.Context, userID int64, p Period, now time.Time) (*StatsResult, error) {
	to := now.Truncate(time.Second)

	var from time.Time
	var label string
	var sessions []*domain.Session

	if p.LastSession {
		last, err := s.sessions.GetMostRecent(ctx, userID)
		if err != nil {
			return nil, err
		}
		sessions = []*domain.Session{last}
		from = last.StartedAt
		label = "the last session"
	} else {
		from = to.AddDate(0, -p.Months, -(p.Weeks*7 + p.Days)).Add(-time.Duration(p.Hours) * time.Hour)
		var err error
		sessions, err = s.sessions.ListStartedAfter(ctx, userID, from)
		if err != nil {
			return nil, err
		}
		label = fmt.Sprintf("%s - %s", from.Format("2006-01-02 15:04:05"), to.Format("2006-01-02 15:04:05"))
	}

	sessionIDs := make([]int64, len(sessions))
	for i, sess := range sessions {
		sessionIDs[i] = sess.ID
	}
	activities, err := s.activities.ListLabeledBySessions(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	return &StatsResult{
		From:        from,
		To:          to,
		PeriodLabel: label,
		Stats:       aggregateByCategory(activities),
		Activities:  activities,
	}, nil
}

// aggregateByCategory sums labeled time per category and computes each
// category's share, sorted by total descending.
func aggregateByCategory(activities []*domain.LabeledActivity) []domain.CategoryStat {
	totals := make(map[string]time.Duration)
	var order []string
	var overall time.Duration

	for _, a := range activities {
		if _, seen := totals[a.CategoryName]; !seen {
			order = append(order, a.CategoryName)
		}
		d := a.Duration()
		totals[a.CategoryName] += d
		overall += d
	}

	stats := make([]domain.CategoryStat, 0, len(order))
	for _, name := range order {
		stat := domain.CategoryStat{Category: name, Total: totals[name]}
		if overall > 0 {
			stat.Percent = float64(totals[name]) / float64(overall) * 100
		}
		stats = append(stats, stat)
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Total > stats[j].Total
	})
	return stats
}
