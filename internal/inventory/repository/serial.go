package repository

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/negobi/negobi-gateway/pkg/erp"
)

const serialCollection = "/product-serials"

// Serial status values as stored by the ERP.
const (
	SerialStatusAvailable = "Available"
	SerialStatusSold      = "Sold"
	SerialStatusReserved  = "Reserved"
	SerialStatusInTransit = "In Transit"
	SerialStatusDefective = "Defective"
)

// SerialStatuses lists every valid serial status.
var SerialStatuses = []string{
	SerialStatusAvailable,
	SerialStatusSold,
	SerialStatusReserved,
	SerialStatusInTransit,
	SerialStatusDefective,
}

// ValidSerialStatus reports whether s is a known serial status.
func ValidSerialStatus(s string) bool {
	for _, known := range SerialStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ProductSerial is a serialized inventory unit. serial_number is globally
// unique; the unit holds exactly one status at a time and no client-side
// history is kept.
type ProductSerial struct {
	ID                 int64           `json:"id"`
	ProductID          int64           `json:"product_id"`
	SerialNumber       string          `json:"serial_number"`
	Status             string          `json:"status"`
	CurrentWarehouseID int64           `json:"currentWarehouseId"`
	PurchasePrice      decimal.Decimal `json:"purchase_price"`
}

// SerialQuery filters serial list requests.
type SerialQuery struct {
	ProductID    int64
	WarehouseID  int64
	Status       string
	SerialNumber string
	Search       string
	Order        string
	Page         int
	PerPage      int
}

func (q SerialQuery) listQuery() erp.ListQuery {
	filters := map[string]string{}
	if q.ProductID > 0 {
		filters["productId"] = strconv.FormatInt(q.ProductID, 10)
	}
	if q.WarehouseID > 0 {
		filters["warehouseId"] = strconv.FormatInt(q.WarehouseID, 10)
	}
	if q.Status != "" {
		filters["status"] = q.Status
	}
	if q.SerialNumber != "" {
		filters["serial_number"] = q.SerialNumber
	}
	return erp.ListQuery{
		Page:    q.Page,
		PerPage: q.PerPage,
		Search:  q.Search,
		Order:   q.Order,
		Filters: filters,
	}
}

// SerialRepository adapts the /product-serials endpoints.
type SerialRepository struct {
	client *erp.Client
}

// NewSerialRepository creates a serial repository over the upstream client.
func NewSerialRepository(client *erp.Client) *SerialRepository {
	return &SerialRepository{client: client}
}

// List fetches one page of serials.
func (r *SerialRepository) List(ctx context.Context, q SerialQuery) (erp.ListPage[ProductSerial], error) {
	return erp.GetList[ProductSerial](ctx, r.client, serialCollection, q.listQuery())
}

// ListAll fetches every serial matching the query, following pages.
func (r *SerialRepository) ListAll(ctx context.Context, q SerialQuery) ([]ProductSerial, error) {
	return erp.FetchAll[ProductSerial](ctx, r.client, serialCollection, q.listQuery())
}

// GetByID fetches one serial.
func (r *SerialRepository) GetByID(ctx context.Context, id int64) (ProductSerial, error) {
	return erp.GetOne[ProductSerial](ctx, r.client, erp.Path(serialCollection, id))
}

// Create creates a serial.
func (r *SerialRepository) Create(ctx context.Context, serial ProductSerial) (ProductSerial, error) {
	return erp.Post[ProductSerial](ctx, r.client, serialCollection, serial)
}

// Update applies a partial update to a serial.
func (r *SerialRepository) Update(ctx context.Context, id int64, fields map[string]any) (ProductSerial, error) {
	return erp.Patch[ProductSerial](ctx, r.client, erp.Path(serialCollection, id), fields)
}

// Delete removes a serial.
func (r *SerialRepository) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, erp.Path(serialCollection, id))
}
