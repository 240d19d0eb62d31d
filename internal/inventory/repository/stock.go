package repository

import (
	"context"
	"strconv"

	"github.com/negobi/negobi-gateway/pkg/erp"
)

const stockCollection = "/stock-by-warehouse"

// StockRecord is a per-warehouse stock row as served by the ERP.
type StockRecord struct {
	ID               int64   `json:"id"`
	WarehouseID      int64   `json:"warehouseId"`
	ProductID        int64   `json:"productId"`
	Stock            float64 `json:"stock"`
	ReserveStock     float64 `json:"reserve_stock"`
	IncomingStock    float64 `json:"incoming_stock"`
	MinStock         float64 `json:"min_stock"`
	MaxStock         float64 `json:"max_stock"`
	Location         string  `json:"location,omitempty"`
	ErpCodeProduct   string  `json:"erp_code_product,omitempty"`
	ErpCodeWarehouse string  `json:"erp_code_warehouse,omitempty"`
}

// StockQuery filters stock list requests.
type StockQuery struct {
	WarehouseID int64
	ProductID   int64
	Search      string
	Order       string
	Page        int
	PerPage     int
}

func (q StockQuery) listQuery() erp.ListQuery {
	filters := map[string]string{}
	if q.WarehouseID > 0 {
		filters["warehouseId"] = strconv.FormatInt(q.WarehouseID, 10)
	}
	if q.ProductID > 0 {
		filters["productId"] = strconv.FormatInt(q.ProductID, 10)
	}
	return erp.ListQuery{
		Page:    q.Page,
		PerPage: q.PerPage,
		Search:  q.Search,
		Order:   q.Order,
		Filters: filters,
	}
}

// SyncRow is one entry of the bulk ERP reconciliation upsert.
type SyncRow struct {
	ErpCodeProduct   string  `json:"erp_code_product"`
	ErpCodeWarehouse string  `json:"erp_code_warehouse"`
	Stock            float64 `json:"stock"`
	ReserveStock     float64 `json:"reserve_stock,omitempty"`
	IncomingStock    float64 `json:"incoming_stock,omitempty"`
	MinStock         float64 `json:"min_stock,omitempty"`
	MaxStock         float64 `json:"max_stock,omitempty"`
	Location         string  `json:"location,omitempty"`
}

// SyncResult reports the outcome of a bulk upsert.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// StockRepository adapts the /stock-by-warehouse endpoints.
type StockRepository struct {
	client *erp.Client
}

// NewStockRepository creates a stock repository over the upstream client.
func NewStockRepository(client *erp.Client) *StockRepository {
	return &StockRepository{client: client}
}

// List fetches one page of stock rows.
func (r *StockRepository) List(ctx context.Context, q StockQuery) (erp.ListPage[StockRecord], error) {
	return erp.GetList[StockRecord](ctx, r.client, stockCollection, q.listQuery())
}

// ListAll fetches every stock row matching the query, following pages.
func (r *StockRepository) ListAll(ctx context.Context, q StockQuery) ([]StockRecord, error) {
	return erp.FetchAll[StockRecord](ctx, r.client, stockCollection, q.listQuery())
}

// GetByID fetches one stock row.
func (r *StockRepository) GetByID(ctx context.Context, id int64) (StockRecord, error) {
	return erp.GetOne[StockRecord](ctx, r.client, erp.Path(stockCollection, id))
}

// Create creates a stock row.
func (r *StockRepository) Create(ctx context.Context, rec StockRecord) (StockRecord, error) {
	return erp.Post[StockRecord](ctx, r.client, stockCollection, rec)
}

// Update applies a partial update to a stock row.
func (r *StockRepository) Update(ctx context.Context, id int64, fields map[string]any) (StockRecord, error) {
	return erp.Patch[StockRecord](ctx, r.client, erp.Path(stockCollection, id), fields)
}

// SetStock sets the physical on-hand quantity of a stock row.
func (r *StockRepository) SetStock(ctx context.Context, id int64, stock float64) (StockRecord, error) {
	return r.Update(ctx, id, map[string]any{"stock": stock})
}

// Delete soft-deletes a stock row.
func (r *StockRepository) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, erp.Path(stockCollection, id))
}

// Sync bulk-upserts stock rows tagged with ERP codes.
func (r *StockRepository) Sync(ctx context.Context, rows []SyncRow) (SyncResult, error) {
	return erp.Post[SyncResult](ctx, r.client, stockCollection+"/sync", map[string]any{"items": rows})
}
