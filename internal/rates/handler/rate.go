package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/negobi/negobi-gateway/internal/rates/repository"
	"github.com/negobi/negobi-gateway/internal/rates/service"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/httputil"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// RateHandler handles exchange-rate endpoints
type RateHandler struct {
	service *service.RateService
	logger  *logger.Logger
}

// NewRateHandler creates a new rate handler
func NewRateHandler(svc *service.RateService, log *logger.Logger) *RateHandler {
	return &RateHandler{
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

func queryInt64(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return v
}

// List lists exchange rates
func (h *RateHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("itemsPerPage"))

	result, err := h.service.List(r.Context(), repository.RateQuery{
		BaseCurrencyID:   queryInt64(r, "baseCurrencyId"),
		TargetCurrencyID: queryInt64(r, "targetCurrencyId"),
		Search:           r.URL.Query().Get("search"),
		Order:            r.URL.Query().Get("order"),
		Page:             page,
		PerPage:          perPage,
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

// Get gets a rate by ID
func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	rate, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rate)
}

// Create creates a new rate
func (h *RateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rate repository.ExchangeRate
	if err := httputil.DecodeJSON(r, &rate); err != nil {
		httputil.Error(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), rate)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, created)
}

// Update partially updates a rate
func (h *RateHandler) Update(w http.ResponseWriter, r *http.Request) {
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

// Delete removes a rate
func (h *RateHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Latest returns the latest active rate for a currency pair
func (h *RateHandler) Latest(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.LatestActiveRate(r.Context(), queryInt64(r, "baseCurrencyId"), queryInt64(r, "targetCurrencyId"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rate)
}

// Convert converts an amount between currencies
func (h *RateHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount           decimal.Decimal `json:"amount"`
		BaseCurrencyID   int64           `json:"baseCurrencyId" validate:"required,gt=0"`
		TargetCurrencyID int64           `json:"targetCurrencyId" validate:"required,gt=0"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	conversion, err := h.service.Convert(r.Context(), req.Amount, req.BaseCurrencyID, req.TargetCurrencyID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, conversion)
}
