package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/negobi/negobi-gateway/pkg/erp"
)

const rateCollection = "/exchange-rates"

// ExchangeRate is one currency-pair rate as served by the ERP.
type ExchangeRate struct {
	ID               int64           `json:"id"`
	BaseCurrencyID   int64           `json:"baseCurrencyId"`
	TargetCurrencyID int64           `json:"targetCurrencyId"`
	Rate             decimal.Decimal `json:"exchange_rate"`
	RateDate         time.Time       `json:"rate_date"`
	IsActive         bool            `json:"is_active"`
}

// RateQuery filters exchange-rate list requests.
type RateQuery struct {
	BaseCurrencyID   int64
	TargetCurrencyID int64
	Search           string
	Order            string
	Page             int
	PerPage          int
}

func (q RateQuery) listQuery() erp.ListQuery {
	filters := map[string]string{}
	if q.BaseCurrencyID > 0 {
		filters["baseCurrencyId"] = strconv.FormatInt(q.BaseCurrencyID, 10)
	}
	if q.TargetCurrencyID > 0 {
		filters["targetCurrencyId"] = strconv.FormatInt(q.TargetCurrencyID, 10)
	}
	return erp.ListQuery{
		Page:    q.Page,
		PerPage: q.PerPage,
		Search:  q.Search,
		Order:   q.Order,
		Filters: filters,
	}
}

// RateRepository adapts the /exchange-rates endpoints.
type RateRepository struct {
	client *erp.Client
}

// NewRateRepository creates an exchange-rate repository over the upstream client.
func NewRateRepository(client *erp.Client) *RateRepository {
	return &RateRepository{client: client}
}

// List fetches one page of rates.
func (r *RateRepository) List(ctx context.Context, q RateQuery) (erp.ListPage[ExchangeRate], error) {
	return erp.GetList[ExchangeRate](ctx, r.client, rateCollection, q.listQuery())
}

// ListAll fetches every rate matching the query, following pages.
func (r *RateRepository) ListAll(ctx context.Context, q RateQuery) ([]ExchangeRate, error) {
	return erp.FetchAll[ExchangeRate](ctx, r.client, rateCollection, q.listQuery())
}

// GetByID fetches one rate.
func (r *RateRepository) GetByID(ctx context.Context, id int64) (ExchangeRate, error) {
	return erp.GetOne[ExchangeRate](ctx, r.client, erp.Path(rateCollection, id))
}

// Create creates a rate.
func (r *RateRepository) Create(ctx context.Context, rate ExchangeRate) (ExchangeRate, error) {
	return erp.Post[ExchangeRate](ctx, r.client, rateCollection, rate)
}

// Update applies a partial update to a rate.
func (r *RateRepository) Update(ctx context.Context, id int64, fields map[string]any) (ExchangeRate, error) {
	return erp.Patch[ExchangeRate](ctx, r.client, erp.Path(rateCollection, id), fields)
}

// Delete removes a rate.
func (r *RateRepository) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, erp.Path(rateCollection, id))
}
