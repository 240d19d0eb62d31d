package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/negobi/negobi-gateway/internal/visits/repository"
	"github.com/negobi/negobi-gateway/internal/visits/service"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/httputil"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// VisitHandler handles visit endpoints
type VisitHandler struct {
	service *service.VisitService
	logger  *logger.Logger
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(svc *service.VisitService, log *logger.Logger) *VisitHandler {
	return &VisitHandler{
		service: svc,
		logger:  log,
	}
}

func urlID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("invalid id")
	}
	return id, nil
}

func queryTime(r *http.Request, key string) time.Time {
	t, _ := time.Parse(time.RFC3339, r.URL.Query().Get(key))
	return t
}

func visitQuery(r *http.Request) repository.VisitQuery {
	clientID, _ := strconv.ParseInt(r.URL.Query().Get("clientId"), 10, 64)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("itemsPerPage"))
	return repository.VisitQuery{
		Status:   r.URL.Query().Get("status"),
		ClientID: clientID,
		DateFrom: queryTime(r, "date_from"),
		DateTo:   queryTime(r, "date_to"),
		Search:   r.URL.Query().Get("search"),
		Order:    r.URL.Query().Get("order"),
		Page:     page,
		PerPage:  perPage,
	}
}

// List lists visits
func (h *VisitHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), visitQuery(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, page.Items, &httputil.Meta{
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

// Get gets a visit by ID
func (h *VisitHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	visit, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, visit)
}

// Create validates and creates a visit
func (h *VisitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var visit repository.Visit
	if err := httputil.DecodeJSON(r, &visit); err != nil {
		httputil.Error(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), visit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, created)
}

// Update validates and updates a visit
func (h *VisitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var visit repository.Visit
	if err := httputil.DecodeJSON(r, &visit); err != nil {
		httputil.Error(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, visit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, updated)
}

// Delete removes a visit
func (h *VisitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Conflicts checks a candidate slot for schedule conflicts
func (h *VisitHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	date := queryTime(r, "date")
	if date.IsZero() {
		httputil.Error(w, errors.BadRequest("date query parameter is required (RFC3339)"))
		return
	}

	var duration time.Duration
	if minutes, err := strconv.Atoi(r.URL.Query().Get("duration")); err == nil && minutes > 0 {
		duration = time.Duration(minutes) * time.Minute
	}
	excludeID, _ := strconv.ParseInt(r.URL.Query().Get("excludeId"), 10, 64)

	conflicts, err := h.service.CheckScheduleConflict(r.Context(), date, duration, excludeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"has_conflict": len(conflicts) > 0,
		"conflicts":    conflicts,
	})
}

// OptimizeRoute orders the submitted visits into a nearest-neighbor route
func (h *VisitHandler) OptimizeRoute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visits []repository.Visit `json:"visits"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, service.PlanRoute(req.Visits))
}

// Statistics summarizes the visit book
func (h *VisitHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}
