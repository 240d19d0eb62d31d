package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/negobi/negobi-gateway/internal/rates/repository"
	"github.com/negobi/negobi-gateway/pkg/erp"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// RateService resolves exchange rates and converts amounts.
type RateService struct {
	repo   *repository.RateRepository
	logger *logger.Logger
}

// NewRateService creates a rate service.
func NewRateService(repo *repository.RateRepository, log *logger.Logger) *RateService {
	return &RateService{
		repo:   repo,
		logger: log.WithComponent("rates"),
	}
}

// List returns one page of rates.
func (s *RateService) List(ctx context.Context, q repository.RateQuery) (erp.ListPage[repository.ExchangeRate], error) {
	return s.repo.List(ctx, q)
}

// Get returns one rate.
func (s *RateService) Get(ctx context.Context, id int64) (repository.ExchangeRate, error) {
	return s.repo.GetByID(ctx, id)
}

// Create creates a rate.
func (s *RateService) Create(ctx context.Context, rate repository.ExchangeRate) (repository.ExchangeRate, error) {
	if rate.Rate.LessThanOrEqual(decimal.Zero) {
		return repository.ExchangeRate{}, errors.BadRequest("exchange_rate must be positive")
	}
	if rate.BaseCurrencyID == rate.TargetCurrencyID {
		return repository.ExchangeRate{}, errors.BadRequest("base and target currency must differ")
	}
	return s.repo.Create(ctx, rate)
}

// Update applies a partial update to a rate.
func (s *RateService) Update(ctx context.Context, id int64, fields map[string]any) (repository.ExchangeRate, error) {
	return s.repo.Update(ctx, id, fields)
}

// Delete removes a rate.
func (s *RateService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// LatestActiveRate returns the most recent active rate for a currency pair.
func (s *RateService) LatestActiveRate(ctx context.Context, baseID, targetID int64) (repository.ExchangeRate, error) {
	if baseID <= 0 || targetID <= 0 {
		return repository.ExchangeRate{}, errors.BadRequest("base and target currency ids are required")
	}

	rates, err := s.repo.ListAll(ctx, repository.RateQuery{
		BaseCurrencyID:   baseID,
		TargetCurrencyID: targetID,
	})
	if err != nil {
		return repository.ExchangeRate{}, err
	}

	var latest *repository.ExchangeRate
	for i := range rates {
		rate := &rates[i]
		if !rate.IsActive {
			continue
		}
		if rate.BaseCurrencyID != baseID || rate.TargetCurrencyID != targetID {
			continue
		}
		if latest == nil || rate.RateDate.After(latest.RateDate) {
			latest = rate
		}
	}
	if latest == nil {
		return repository.ExchangeRate{}, errors.NotFound(
			fmt.Sprintf("active exchange rate for pair %d->%d", baseID, targetID))
	}
	return *latest, nil
}

// Conversion is the result of a currency conversion.
type Conversion struct {
	Amount    decimal.Decimal `json:"amount"`
	Converted decimal.Decimal `json:"converted"`
	Rate      decimal.Decimal `json:"rate"`
	RateID    int64           `json:"rate_id,omitempty"`
}

// Convert converts an amount using the latest active rate of the pair,
// rounded to 2 decimals. Converting to the same currency is an identity.
func (s *RateService) Convert(ctx context.Context, amount decimal.Decimal, baseID, targetID int64) (Conversion, error) {
	if baseID == targetID {
		return Conversion{Amount: amount, Converted: amount, Rate: decimal.NewFromInt(1)}, nil
	}

	rate, err := s.LatestActiveRate(ctx, baseID, targetID)
	if err != nil {
		return Conversion{}, err
	}

	return Conversion{
		Amount:    amount,
		Converted: amount.Mul(rate.Rate).Round(2),
		Rate:      rate.Rate,
		RateID:    rate.ID,
	}, nil
}
