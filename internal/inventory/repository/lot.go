package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/negobi/negobi-gateway/pkg/erp"
)

const lotCollection = "/product-lots"

// ProductLot is a lot-tracked inventory batch. lot_number is unique per
// product; the upstream enforces that and reports violations as conflicts.
type ProductLot struct {
	ID                 int64           `json:"id"`
	ProductID          int64           `json:"product_id"`
	LotNumber          string          `json:"lot_number"`
	Quantity           float64         `json:"quantity"`
	ExpirationDate     *time.Time      `json:"expiration_date,omitempty"`
	ManufacturingDate  *time.Time      `json:"manufacturing_date,omitempty"`
	PurchasePrice      decimal.Decimal `json:"purchase_price"`
	CurrentWarehouseID int64           `json:"currentWarehouseId"`
}

// LotQuery filters lot list requests.
type LotQuery struct {
	ProductID   int64
	WarehouseID int64
	Search      string
	Order       string
	Page        int
	PerPage     int
}

func (q LotQuery) listQuery() erp.ListQuery {
	filters := map[string]string{}
	if q.ProductID > 0 {
		filters["productId"] = strconv.FormatInt(q.ProductID, 10)
	}
	if q.WarehouseID > 0 {
		filters["warehouseId"] = strconv.FormatInt(q.WarehouseID, 10)
	}
	return erp.ListQuery{
		Page:    q.Page,
		PerPage: q.PerPage,
		Search:  q.Search,
		Order:   q.Order,
		Filters: filters,
	}
}

// LotRepository adapts the /product-lots endpoints.
type LotRepository struct {
	client *erp.Client
}

// NewLotRepository creates a lot repository over the upstream client.
func NewLotRepository(client *erp.Client) *LotRepository {
	return &LotRepository{client: client}
}

// List fetches one page of lots.
func (r *LotRepository) List(ctx context.Context, q LotQuery) (erp.ListPage[ProductLot], error) {
	return erp.GetList[ProductLot](ctx, r.client, lotCollection, q.listQuery())
}

// ListAll fetches every lot matching the query, following pages.
func (r *LotRepository) ListAll(ctx context.Context, q LotQuery) ([]ProductLot, error) {
	return erp.FetchAll[ProductLot](ctx, r.client, lotCollection, q.listQuery())
}

// GetByID fetches one lot.
func (r *LotRepository) GetByID(ctx context.Context, id int64) (ProductLot, error) {
	return erp.GetOne[ProductLot](ctx, r.client, erp.Path(lotCollection, id))
}

// Create creates a lot.
func (r *LotRepository) Create(ctx context.Context, lot ProductLot) (ProductLot, error) {
	return erp.Post[ProductLot](ctx, r.client, lotCollection, lot)
}

// Update applies a partial update to a lot.
func (r *LotRepository) Update(ctx context.Context, id int64, fields map[string]any) (ProductLot, error) {
	return erp.Patch[ProductLot](ctx, r.client, erp.Path(lotCollection, id), fields)
}

// SetQuantity sets the remaining quantity of a lot.
func (r *LotRepository) SetQuantity(ctx context.Context, id int64, quantity float64) (ProductLot, error) {
	return r.Update(ctx, id, map[string]any{"quantity": quantity})
}

// Delete removes a lot.
func (r *LotRepository) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, erp.Path(lotCollection, id))
}
