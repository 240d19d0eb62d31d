package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/negobi/negobi-gateway/internal/inventory/repository"
	"github.com/negobi/negobi-gateway/pkg/erp"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// LotService manages lot-tracked inventory: quantity adjustments and
// expiration queries.
type LotService struct {
	repo   *repository.LotRepository
	now    func() time.Time
	logger *logger.Logger
}

// NewLotService creates a lot service.
func NewLotService(repo *repository.LotRepository, log *logger.Logger) *LotService {
	return &LotService{
		repo:   repo,
		now:    time.Now,
		logger: log.WithComponent("lots"),
	}
}

// List returns one page of lots.
func (s *LotService) List(ctx context.Context, q repository.LotQuery) (erp.ListPage[repository.ProductLot], error) {
	return s.repo.List(ctx, q)
}

// Get returns one lot.
func (s *LotService) Get(ctx context.Context, id int64) (repository.ProductLot, error) {
	return s.repo.GetByID(ctx, id)
}

// Create creates a lot.
func (s *LotService) Create(ctx context.Context, lot repository.ProductLot) (repository.ProductLot, error) {
	if lot.Quantity < 0 {
		return repository.ProductLot{}, errors.BadRequest("lot quantity cannot be negative")
	}
	return s.repo.Create(ctx, lot)
}

// Update applies a partial update to a lot.
func (s *LotService) Update(ctx context.Context, id int64, fields map[string]any) (repository.ProductLot, error) {
	return s.repo.Update(ctx, id, fields)
}

// Delete removes a lot.
func (s *LotService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AdjustQuantity applies a signed delta to a lot's quantity, clamping the
// result at zero, and returns the updated lot.
func (s *LotService) AdjustQuantity(ctx context.Context, id int64, delta float64) (repository.ProductLot, error) {
	lot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.ProductLot{}, err
	}

	quantity := lot.Quantity + delta
	if quantity < 0 {
		quantity = 0
	}
	return s.repo.SetQuantity(ctx, id, quantity)
}

// Expired returns lots whose expiration date has passed. Lots with no
// remaining quantity pose no risk and are skipped.
func (s *LotService) Expired(ctx context.Context, q repository.LotQuery) ([]repository.ProductLot, error) {
	lots, err := s.repo.ListAll(ctx, q)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expired := make([]repository.ProductLot, 0)
	for _, lot := range lots {
		if lot.Quantity <= 0 || lot.ExpirationDate == nil {
			continue
		}
		if lot.ExpirationDate.Before(now) {
			expired = append(expired, lot)
		}
	}
	return expired, nil
}

// Expiring returns lots with remaining quantity that expire within the next
// days days.
func (s *LotService) Expiring(ctx context.Context, q repository.LotQuery, days int) ([]repository.ProductLot, error) {
	if days <= 0 {
		return nil, errors.BadRequest("days must be positive")
	}
	lots, err := s.repo.ListAll(ctx, q)
	if err != nil {
		return nil, err
	}

	now := s.now()
	horizon := now.AddDate(0, 0, days)
	expiring := make([]repository.ProductLot, 0)
	for _, lot := range lots {
		if lot.Quantity <= 0 || lot.ExpirationDate == nil {
			continue
		}
		if !lot.ExpirationDate.Before(now) && lot.ExpirationDate.Before(horizon) {
			expiring = append(expiring, lot)
		}
	}
	return expiring, nil
}

// BulkResult reports a bulk creation, which the upstream only supports as
// sequential per-item creates. A failure aborts the remaining creates without
// rolling back prior successes, so partial state is possible and reported.
type BulkResult[T any] struct {
	Created     []T    `json:"created"`
	FailedIndex int    `json:"failed_index,omitempty"`
	FailedError string `json:"failed_error,omitempty"`
	Complete    bool   `json:"complete"`
}

// BulkCreate creates lots one by one, stopping at the first failure.
func (s *LotService) BulkCreate(ctx context.Context, lots []repository.ProductLot) (BulkResult[repository.ProductLot], error) {
	if len(lots) == 0 {
		return BulkResult[repository.ProductLot]{}, errors.BadRequest("bulk create requires at least one lot")
	}

	result := BulkResult[repository.ProductLot]{Created: make([]repository.ProductLot, 0, len(lots))}
	for i, lot := range lots {
		created, err := s.Create(ctx, lot)
		if err != nil {
			result.FailedIndex = i
			result.FailedError = err.Error()
			s.logger.Warn().
				Int("index", i).
				Int("created", len(result.Created)).
				Err(err).
				Msg("bulk lot creation aborted, prior creates remain")
			return result, errors.Wrap(err, "BULK_PARTIAL_FAILURE",
				fmt.Sprintf("bulk create failed at item %d after %d successes", i, len(result.Created)), 502).
				WithDetails(map[string]string{
					"created":      strconv.Itoa(len(result.Created)),
					"failed_index": strconv.Itoa(i),
				})
		}
		result.Created = append(result.Created, created)
	}
	result.Complete = true
	return result, nil
}
