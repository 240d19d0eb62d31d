package handler

import (
	"net/http"

	"github.com/negobi/negobi-gateway/internal/inventory/repository"
	"github.com/negobi/negobi-gateway/internal/inventory/service"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/httputil"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// LotHandler handles product-lot endpoints
type LotHandler struct {
	service *service.LotService
	logger  *logger.Logger
}

// NewLotHandler creates a new lot handler
func NewLotHandler(svc *service.LotService, log *logger.Logger) *LotHandler {
	return &LotHandler{
		service: svc,
		logger:  log,
	}
}

func lotQuery(r *http.Request) repository.LotQuery {
	return repository.LotQuery{
		ProductID:   queryInt64(r, "productId"),
		WarehouseID: queryInt64(r, "warehouseId"),
		Search:      r.URL.Query().Get("search"),
		Order:       r.URL.Query().Get("order"),
		Page:        queryInt(r, "page"),
		PerPage:     queryInt(r, "itemsPerPage"),
	}
}

// List lists lots
func (h *LotHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), lotQuery(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, page.Items, &httputil.Meta{
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

// Get gets a lot by ID
func (h *LotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	lot, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lot)
}

// Create creates a new lot
func (h *LotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var lot repository.ProductLot
	if err := httputil.DecodeJSON(r, &lot); err != nil {
		httputil.Error(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), lot)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, created)
}

// Update partially updates a lot
func (h *LotHandler) Update(w http.ResponseWriter, r *http.Request) {
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

// Delete removes a lot
func (h *LotHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Adjust applies a signed quantity delta to a lot
func (h *LotHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if req.Delta == 0 {
		httputil.Error(w, errors.BadRequest("delta must be non-zero"))
		return
	}

	lot, err := h.service.AdjustQuantity(r.Context(), id, req.Delta)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lot)
}

// Expired lists expired lots that still hold quantity
func (h *LotHandler) Expired(w http.ResponseWriter, r *http.Request) {
	lots, err := h.service.Expired(r.Context(), lotQuery(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lots)
}

// Expiring lists lots expiring within ?days= days
func (h *LotHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days")
	if days == 0 {
		days = 30
	}

	lots, err := h.service.Expiring(r.Context(), lotQuery(r), days)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, lots)
}

// BulkCreate creates several lots sequentially
func (h *LotHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []repository.ProductLot `json:"items"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.BulkCreate(r.Context(), req.Items)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}
