package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/negobi/negobi-gateway/pkg/erp"
)

const offeringCollection = "/services"

// Offering is a sellable service from the company catalog.
type Offering struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CurrencyID  int64           `json:"currencyId"`
	IsActive    bool            `json:"is_active"`
}

// OfferingQuery filters catalog list requests.
type OfferingQuery struct {
	Search  string
	Order   string
	Page    int
	PerPage int
}

// OfferingRepository adapts the /services endpoints.
type OfferingRepository struct {
	client *erp.Client
}

// NewOfferingRepository creates a catalog repository over the upstream client.
func NewOfferingRepository(client *erp.Client) *OfferingRepository {
	return &OfferingRepository{client: client}
}

// List fetches one page of offerings.
func (r *OfferingRepository) List(ctx context.Context, q OfferingQuery) (erp.ListPage[Offering], error) {
	return erp.GetList[Offering](ctx, r.client, offeringCollection, erp.ListQuery{
		Page:    q.Page,
		PerPage: q.PerPage,
		Search:  q.Search,
		Order:   q.Order,
	})
}

// GetByID fetches one offering.
func (r *OfferingRepository) GetByID(ctx context.Context, id int64) (Offering, error) {
	return erp.GetOne[Offering](ctx, r.client, erp.Path(offeringCollection, id))
}

// Create creates an offering.
func (r *OfferingRepository) Create(ctx context.Context, offering Offering) (Offering, error) {
	return erp.Post[Offering](ctx, r.client, offeringCollection, offering)
}

// Update applies a partial update to an offering.
func (r *OfferingRepository) Update(ctx context.Context, id int64, fields map[string]any) (Offering, error) {
	return erp.Patch[Offering](ctx, r.client, erp.Path(offeringCollection, id), fields)
}

// Delete removes an offering.
func (r *OfferingRepository) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, erp.Path(offeringCollection, id))
}
