package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/negobi/negobi-gateway/internal/catalog/repository"
	"github.com/negobi/negobi-gateway/internal/catalog/service"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/httputil"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// OfferingHandler handles catalog endpoints
type OfferingHandler struct {
	service *service.CatalogService
	logger  *logger.Logger
}

// NewOfferingHandler creates a new catalog handler
func NewOfferingHandler(svc *service.CatalogService, log *logger.Logger) *OfferingHandler {
	return &OfferingHandler{
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

// List lists offerings
func (h *OfferingHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("itemsPerPage"))

	result, err := h.service.List(r.Context(), repository.OfferingQuery{
		Search:  r.URL.Query().Get("search"),
		Order:   r.URL.Query().Get("order"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, result.Items, &httputil.Meta{
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// Get gets an offering by ID
func (h *OfferingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	offering, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, offering)
}

// Create creates a new offering
func (h *OfferingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var offering repository.Offering
	if err := httputil.DecodeJSON(r, &offering); err != nil {
		httputil.Error(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), offering)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, created)
}

// Update partially updates an offering
func (h *OfferingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var fields map[string]any
	if err := httputil.DecodeJSON(r, &fields); err != nil {
		httputil.Error(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, fields)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, updated)
}

// Delete removes an offering
func (h *OfferingHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
