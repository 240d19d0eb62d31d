package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negobi/negobi-gateway/internal/visits/repository"
	"github.com/negobi/negobi-gateway/pkg/config"
	"github.com/negobi/negobi-gateway/pkg/erp"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func newVisitService(t *testing.T, h http.Handler) *VisitService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := erp.NewClient(&config.UpstreamConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
		PageSize:       50,
	}, logger.New("test", "test"))

	svc := NewVisitService(repository.NewVisitRepository(client), time.Hour, logger.New("test", "test"))
	svc.now = func() time.Time { return testNow }
	return svc
}

func validVisit() repository.Visit {
	return repository.Visit{
		Date:        testNow.Add(24 * time.Hour),
		Location:    repository.GeoPoint{Lon: -66.9, Lat: 10.48},
		Status:      repository.VisitStatusPending,
		Description: "quarterly account review",
	}
}

func TestValidate_AcceptsWellFormedVisit(t *testing.T) {
	svc := newVisitService(t, http.NewServeMux())
	assert.Empty(t, svc.Validate(validVisit()))
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	svc := newVisitService(t, http.NewServeMux())

	visit := repository.Visit{
		Date:     testNow.Add(-time.Hour),
		Location: repository.GeoPoint{Lon: 181, Lat: -91},
	}

	violations := svc.Validate(visit)
	require.Len(t, violations, 5)
	assert.Contains(t, violations, "date must not be in the past")
	assert.Contains(t, violations, "longitude must be between -180 and 180")
	assert.Contains(t, violations, "latitude must be between -90 and 90")
	assert.Contains(t, violations, "description is required")
	assert.Contains(t, violations, "status is required")
}

func TestValidate_DescriptionLength(t *testing.T) {
	svc := newVisitService(t, http.NewServeMux())

	visit := validVisit()
	visit.Description = strings.Repeat("a", 500)
	assert.Empty(t, svc.Validate(visit))

	visit.Description = strings.Repeat("a", 501)
	violations := svc.Validate(visit)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "at most 500")

	// Rune count, not byte count.
	visit.Description = strings.Repeat("ñ", 500)
	assert.Empty(t, svc.Validate(visit))
}

func TestValidate_BoundaryCoordinates(t *testing.T) {
	svc := newVisitService(t, http.NewServeMux())

	visit := validVisit()
	visit.Location = repository.GeoPoint{Lon: -180, Lat: 90}
	assert.Empty(t, svc.Validate(visit))

	visit.Location = repository.GeoPoint{Lon: 180, Lat: -90}
	assert.Empty(t, svc.Validate(visit))
}

func TestCreate_RejectsInvalidWithoutDispatch(t *testing.T) {
	dispatched := false
	mux := http.NewServeMux()
	mux.HandleFunc("POST /visits", func(w http.ResponseWriter, r *http.Request) {
		dispatched = true
	})

	svc := newVisitService(t, mux)

	_, err := svc.Create(context.Background(), repository.Visit{})
	require.Error(t, err)
	assert.False(t, dispatched)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.NotEmpty(t, appErr.Details)
}

func TestCheckScheduleConflict_FindsOverlap(t *testing.T) {
	candidate := testNow.Add(24 * time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /visits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, candidate.Add(-2*time.Hour).UTC().Format(time.RFC3339), r.URL.Query().Get("date_from"))
		assert.Equal(t, candidate.Add(2*time.Hour).UTC().Format(time.RFC3339), r.URL.Query().Get("date_to"))
		json.NewEncoder(w).Encode([]repository.Visit{
			{ID: 1, Date: candidate.Add(30 * time.Minute), Status: repository.VisitStatusPending},
			{ID: 2, Date: candidate.Add(90 * time.Minute), Status: repository.VisitStatusPending},
			{ID: 3, Date: candidate.Add(15 * time.Minute), Status: repository.VisitStatusCancelled},
		})
	})

	svc := newVisitService(t, mux)

	// Candidate occupies [0,60m); visit 1 occupies [30m,90m) and overlaps,
	// visit 2 starts after the candidate ends, visit 3 is cancelled.
	conflicts, err := svc.CheckScheduleConflict(context.Background(), candidate, time.Hour, 0)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, int64(1), conflicts[0].Visit.ID)
	assert.Equal(t, candidate.Add(30*time.Minute), conflicts[0].OverlapsStart)
	assert.Equal(t, candidate.Add(time.Hour), conflicts[0].OverlapsEnd)
}

func TestCheckScheduleConflict_ExistingSlotIgnoresDuration(t *testing.T) {
	candidate := testNow.Add(24 * time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /visits", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]repository.Visit{
			{ID: 1, Date: candidate.Add(-45 * time.Minute), Status: repository.VisitStatusPending},
		})
	})

	svc := newVisitService(t, mux)

	// A 30-minute candidate still collides: the existing visit holds a fixed
	// 60-minute slot that runs 15 minutes into the candidate's start.
	conflicts, err := svc.CheckScheduleConflict(context.Background(), candidate, 30*time.Minute, 0)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, candidate.Add(15*time.Minute), conflicts[0].OverlapsEnd)
}

func TestCheckScheduleConflict_ExcludesGivenVisit(t *testing.T) {
	candidate := testNow.Add(24 * time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /visits", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]repository.Visit{
			{ID: 9, Date: candidate, Status: repository.VisitStatusPending},
		})
	})

	svc := newVisitService(t, mux)

	conflicts, err := svc.CheckScheduleConflict(context.Background(), candidate, time.Hour, 9)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	_, err = svc.CheckScheduleConflict(context.Background(), time.Time{}, time.Hour, 0)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestStatistics(t *testing.T) {
	thisWeek := testNow.Add(-24 * time.Hour) // Friday on a Saturday-noon clock
	lastMonth := testNow.AddDate(0, -1, 0)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /visits", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("status") == repository.VisitStatusPending:
			json.NewEncoder(w).Encode([]repository.Visit{{ID: 1}, {ID: 2}})
		case q.Get("status") == repository.VisitStatusCompleted:
			json.NewEncoder(w).Encode([]repository.Visit{{ID: 3}})
		case q.Get("status") == repository.VisitStatusCancelled:
			json.NewEncoder(w).Encode([]repository.Visit{})
		case q.Get("date_from") != "":
			json.NewEncoder(w).Encode([]repository.Visit{{ID: 1, Date: testNow}})
		default:
			json.NewEncoder(w).Encode([]repository.Visit{
				{ID: 1, Date: testNow},
				{ID: 2, Date: thisWeek},
				{ID: 3, Date: lastMonth},
			})
		}
	})

	svc := newVisitService(t, mux)

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 0, stats.Cancelled)
	assert.Equal(t, 1, stats.Today)
	assert.Equal(t, 2, stats.ThisWeek)
	assert.Equal(t, 2, stats.ThisMonth)
}

func TestStartOfWeek(t *testing.T) {
	// 2026-08-29 is a Saturday; its week starts Monday the 24th.
	monday := startOfWeek(time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), monday)

	// A Sunday belongs to the week that started six days earlier.
	sunday := startOfWeek(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), sunday)
}
