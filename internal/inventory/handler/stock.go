package handler

import (
	"net/http"

	"github.com/negobi/negobi-gateway/internal/inventory/repository"
	"github.com/negobi/negobi-gateway/internal/inventory/service"
	"github.com/negobi/negobi-gateway/pkg/httputil"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// StockHandler handles stock-by-warehouse endpoints
type StockHandler struct {
	service *service.StockService
	logger  *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(svc *service.StockService, log *logger.Logger) *StockHandler {
	return &StockHandler{
		service: svc,
		logger:  log,
	}
}

func stockQuery(r *http.Request) repository.StockQuery {
	return repository.StockQuery{
		WarehouseID: queryInt64(r, "warehouseId"),
		ProductID:   queryInt64(r, "productId"),
		Search:      r.URL.Query().Get("search"),
		Order:       r.URL.Query().Get("order"),
		Page:        queryInt(r, "page"),
		PerPage:     queryInt(r, "itemsPerPage"),
	}
}

// List lists stock rows with their analyses
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), stockQuery(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, page.Items, &httputil.Meta{
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

// Get gets one stock row with its analysis
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

// Create creates a stock row
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rec repository.StockRecord
	if err := httputil.DecodeJSON(r, &rec); err != nil {
		httputil.Error(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), rec)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, created)
}

// Update partially updates a stock row
func (h *StockHandler) Update(w http.ResponseWriter, r *http.Request) {
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

// Delete removes a stock row
func (h *StockHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Low lists rows classified LOW
func (h *StockHandler) Low(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStockItems(r.Context(), stockQuery(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// OutOfStock lists rows classified OUT_OF_STOCK
func (h *StockHandler) OutOfStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.OutOfStockItems(r.Context(), stockQuery(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, items)
}

// Transfer moves stock between two rows
func (h *StockHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromID   int64   `json:"from_id" validate:"required,gt=0"`
		ToID     int64   `json:"to_id" validate:"required,gt=0"`
		Quantity float64 `json:"quantity" validate:"required,gt=0"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Transfer(r.Context(), req.FromID, req.ToID, req.Quantity)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Sync bulk-upserts ERP-tagged stock rows
func (h *StockHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []repository.SyncRow `json:"items"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Sync(r.Context(), req.Items)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}
