package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/negobi/negobi-gateway/internal/catalog/repository"
	"github.com/negobi/negobi-gateway/pkg/erp"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// CatalogService manages the sellable-services catalog. Prices are validated
// locally against configured bounds before any network dispatch.
type CatalogService struct {
	repo     *repository.OfferingRepository
	maxPrice decimal.Decimal
	logger   *logger.Logger
}

// NewCatalogService creates a catalog service with the given price ceiling.
func NewCatalogService(repo *repository.OfferingRepository, maxPrice float64, log *logger.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		maxPrice: decimal.NewFromFloat(maxPrice),
		logger:   log.WithComponent("catalog"),
	}
}

func (s *CatalogService) validate(offering repository.Offering) error {
	details := map[string]string{}
	if offering.Name == "" {
		details["name"] = "this field is required"
	}
	if offering.Price.LessThanOrEqual(decimal.Zero) {
		details["price"] = "must be greater than 0"
	} else if offering.Price.GreaterThan(s.maxPrice) {
		details["price"] = fmt.Sprintf("must be at most %s", s.maxPrice)
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// List returns one page of offerings.
func (s *CatalogService) List(ctx context.Context, q repository.OfferingQuery) (erp.ListPage[repository.Offering], error) {
	return s.repo.List(ctx, q)
}

// Get returns one offering.
func (s *CatalogService) Get(ctx context.Context, id int64) (repository.Offering, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and creates an offering.
func (s *CatalogService) Create(ctx context.Context, offering repository.Offering) (repository.Offering, error) {
	if err := s.validate(offering); err != nil {
		return repository.Offering{}, err
	}
	return s.repo.Create(ctx, offering)
}

// Update validates the submitted price, if any, and patches the offering.
func (s *CatalogService) Update(ctx context.Context, id int64, fields map[string]any) (repository.Offering, error) {
	if raw, ok := fields["price"]; ok {
		price, err := toDecimal(raw)
		if err != nil {
			return repository.Offering{}, errors.BadRequest("price must be a number")
		}
		if price.LessThanOrEqual(decimal.Zero) || price.GreaterThan(s.maxPrice) {
			return repository.Offering{}, errors.Validation(map[string]string{
				"price": fmt.Sprintf("must be between 0 (exclusive) and %s", s.maxPrice),
			})
		}
	}
	return s.repo.Update(ctx, id, fields)
}

// Delete removes an offering.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported price type %T", v)
	}
}
