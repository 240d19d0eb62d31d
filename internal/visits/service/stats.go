package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/negobi/negobi-gateway/internal/visits/repository"
)

// Statistics summarizes the visit book.
type Statistics struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Today     int `json:"today"`
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
}

// Statistics issues the five list requests in parallel and derives the
// week/month counts client-side from the full set.
func (s *VisitService) Statistics(ctx context.Context) (Statistics, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var all, pending, completed, cancelled, today []repository.Visit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.repo.ListAll(gctx, repository.VisitQuery{})
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.repo.ListAll(gctx, repository.VisitQuery{Status: repository.VisitStatusPending})
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.repo.ListAll(gctx, repository.VisitQuery{Status: repository.VisitStatusCompleted})
		return err
	})
	g.Go(func() error {
		var err error
		cancelled, err = s.repo.ListAll(gctx, repository.VisitQuery{Status: repository.VisitStatusCancelled})
		return err
	})
	g.Go(func() error {
		var err error
		today, err = s.repo.ListAll(gctx, repository.VisitQuery{DateFrom: dayStart, DateTo: dayEnd})
		return err
	})
	if err := g.Wait(); err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		Total:     len(all),
		Pending:   len(pending),
		Completed: len(completed),
		Cancelled: len(cancelled),
		Today:     len(today),
	}

	weekStart := startOfWeek(dayStart)
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	for _, visit := range all {
		if !visit.Date.Before(weekStart) && visit.Date.Before(weekEnd) {
			stats.ThisWeek++
		}
		if !visit.Date.Before(monthStart) && visit.Date.Before(monthEnd) {
			stats.ThisMonth++
		}
	}
	return stats, nil
}

// startOfWeek returns the Monday 00:00 of the week containing t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday)
}
