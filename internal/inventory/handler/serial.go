package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/negobi/negobi-gateway/internal/inventory/repository"
	"github.com/negobi/negobi-gateway/internal/inventory/service"
	"github.com/negobi/negobi-gateway/pkg/httputil"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// SerialHandler handles product-serial endpoints
type SerialHandler struct {
	service *service.SerialService
	logger  *logger.Logger
}

// NewSerialHandler creates a new serial handler
func NewSerialHandler(svc *service.SerialService, log *logger.Logger) *SerialHandler {
	return &SerialHandler{
		service: svc,
		logger:  log,
	}
}

func serialQuery(r *http.Request) repository.SerialQuery {
	return repository.SerialQuery{
		ProductID:   queryInt64(r, "productId"),
		WarehouseID: queryInt64(r, "warehouseId"),
		Status:      r.URL.Query().Get("status"),
		Search:      r.URL.Query().Get("search"),
		Order:       r.URL.Query().Get("order"),
		Page:        queryInt(r, "page"),
		PerPage:     queryInt(r, "itemsPerPage"),
	}
}

// List lists serials
func (h *SerialHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), serialQuery(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, page.Items, &httputil.Meta{
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

// Get gets a serial by ID
func (h *SerialHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	serial, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, serial)
}

// Create creates a new serial
func (h *SerialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var serial repository.ProductSerial
	if err := httputil.DecodeJSON(r, &serial); err != nil {
		httputil.Error(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), serial)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, created)
}

// Update partially updates a serial
func (h *SerialHandler) Update(w http.ResponseWriter, r *http.Request) {
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

// Delete removes a serial
func (h *SerialHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// ChangeStatus sets a serial's status
func (h *SerialHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	serial, err := h.service.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, serial)
}

// Transfer moves a serial to another warehouse (forces In Transit)
func (h *SerialHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req struct {
		WarehouseID int64 `json:"warehouseId" validate:"required,gt=0"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	serial, err := h.service.TransferToWarehouse(r.Context(), id, req.WarehouseID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, serial)
}

// Availability looks a unit up by serial number
func (h *SerialHandler) Availability(w http.ResponseWriter, r *http.Request) {
	serialNumber := chi.URLParam(r, "serialNumber")

	available, serial, err := h.service.IsAvailable(r.Context(), serialNumber)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"serial_number": serialNumber,
		"available":     available,
		"status":        serial.Status,
	})
}

// BulkCreate creates several serials sequentially
func (h *SerialHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []repository.ProductSerial `json:"items"`
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
