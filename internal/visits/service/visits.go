package service

import (
	"context"
	"fmt"
	"time"

	"github.com/negobi/negobi-gateway/internal/visits/repository"
	"github.com/negobi/negobi-gateway/pkg/erp"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// maxDescriptionLen bounds the visit description.
const maxDescriptionLen = 500

// existingVisitSlot is the window every already-scheduled visit is assumed to
// occupy during conflict checks. The dashboard this replaces applied a fixed
// 60-minute slot to existing visits even when the caller passed a different
// duration for the candidate; that asymmetry is kept on purpose rather than
// silently changed.
const existingVisitSlot = 60 * time.Minute

// conflictFetchWindow is how far around the candidate slot visits are fetched
// for the overlap test.
const conflictFetchWindow = 2 * time.Hour

// VisitService manages field visit scheduling.
type VisitService struct {
	repo            *repository.VisitRepository
	defaultDuration time.Duration
	now             func() time.Time
	logger          *logger.Logger
}

// NewVisitService creates a visit service.
func NewVisitService(repo *repository.VisitRepository, defaultDuration time.Duration, log *logger.Logger) *VisitService {
	if defaultDuration <= 0 {
		defaultDuration = existingVisitSlot
	}
	return &VisitService{
		repo:            repo,
		defaultDuration: defaultDuration,
		now:             time.Now,
		logger:          log.WithComponent("visits"),
	}
}

// Validate checks a visit against the scheduling rules and returns every
// violated rule, not just the first.
func (s *VisitService) Validate(visit repository.Visit) []string {
	var violations []string

	if visit.Date.IsZero() {
		violations = append(violations, "date is required")
	} else if visit.Date.Before(s.now()) {
		violations = append(violations, "date must not be in the past")
	}

	if visit.Location.Lon < -180 || visit.Location.Lon > 180 {
		violations = append(violations, "longitude must be between -180 and 180")
	}
	if visit.Location.Lat < -90 || visit.Location.Lat > 90 {
		violations = append(violations, "latitude must be between -90 and 90")
	}

	if visit.Description == "" {
		violations = append(violations, "description is required")
	} else if len([]rune(visit.Description)) > maxDescriptionLen {
		violations = append(violations, fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}

	if visit.Status == "" {
		violations = append(violations, "status is required")
	}

	return violations
}

func (s *VisitService) validationError(violations []string) error {
	details := make(map[string]string, len(violations))
	for i, v := range violations {
		details[fmt.Sprintf("rule_%d", i+1)] = v
	}
	return errors.Validation(details)
}

// List returns one page of visits.
func (s *VisitService) List(ctx context.Context, q repository.VisitQuery) (erp.ListPage[repository.Visit], error) {
	return s.repo.List(ctx, q)
}

// Get returns one visit.
func (s *VisitService) Get(ctx context.Context, id int64) (repository.Visit, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and creates a visit. Validation short-circuits before any
// network dispatch.
func (s *VisitService) Create(ctx context.Context, visit repository.Visit) (repository.Visit, error) {
	if violations := s.Validate(visit); len(violations) > 0 {
		return repository.Visit{}, s.validationError(violations)
	}
	return s.repo.Create(ctx, visit)
}

// Update validates and partially updates a visit. Only the submitted fields
// are revalidated.
func (s *VisitService) Update(ctx context.Context, id int64, visit repository.Visit) (repository.Visit, error) {
	if violations := s.Validate(visit); len(violations) > 0 {
		return repository.Visit{}, s.validationError(violations)
	}
	fields := map[string]any{
		"date":        visit.Date,
		"location":    visit.Location,
		"status":      visit.Status,
		"description": visit.Description,
	}
	if visit.ClientID > 0 {
		fields["clientId"] = visit.ClientID
	}
	return s.repo.Update(ctx, id, fields)
}

// Delete removes a visit.
func (s *VisitService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Conflict describes one overlapping visit found by CheckScheduleConflict.
type Conflict struct {
	Visit         repository.Visit `json:"visit"`
	OverlapsStart time.Time        `json:"overlaps_start"`
	OverlapsEnd   time.Time        `json:"overlaps_end"`
}

// CheckScheduleConflict fetches visits within ±2h of the candidate slot and
// tests each for interval overlap. Existing visits are assumed to occupy
// existingVisitSlot regardless of duration (see the constant's note). A
// non-positive duration falls back to the configured default.
func (s *VisitService) CheckScheduleConflict(ctx context.Context, date time.Time, duration time.Duration, excludeID int64) ([]Conflict, error) {
	if date.IsZero() {
		return nil, errors.BadRequest("date is required")
	}
	if duration <= 0 {
		duration = s.defaultDuration
	}

	nearby, err := s.repo.ListAll(ctx, repository.VisitQuery{
		DateFrom: date.Add(-conflictFetchWindow),
		DateTo:   date.Add(conflictFetchWindow),
	})
	if err != nil {
		return nil, err
	}

	candStart := date
	candEnd := date.Add(duration)

	conflicts := make([]Conflict, 0)
	for _, visit := range nearby {
		if excludeID > 0 && visit.ID == excludeID {
			continue
		}
		if visit.Status == repository.VisitStatusCancelled {
			continue
		}
		existStart := visit.Date
		existEnd := visit.Date.Add(existingVisitSlot)
		if candStart.Before(existEnd) && existStart.Before(candEnd) {
			conflicts = append(conflicts, Conflict{
				Visit:         visit,
				OverlapsStart: laterOf(candStart, existStart),
				OverlapsEnd:   earlierOf(candEnd, existEnd),
			})
		}
	}
	return conflicts, nil
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
