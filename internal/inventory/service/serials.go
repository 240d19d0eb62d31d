package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/negobi/negobi-gateway/internal/inventory/repository"
	"github.com/negobi/negobi-gateway/pkg/erp"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// SerialService manages serialized inventory units.
//
// Status transitions are deliberately unconstrained: the backoffice corrects
// mislabelled units, so any status may be set from any other. The one side
// effect is warehouse transfer, which always forces "In Transit".
type SerialService struct {
	repo   *repository.SerialRepository
	logger *logger.Logger
}

// NewSerialService creates a serial service.
func NewSerialService(repo *repository.SerialRepository, log *logger.Logger) *SerialService {
	return &SerialService{
		repo:   repo,
		logger: log.WithComponent("serials"),
	}
}

// List returns one page of serials.
func (s *SerialService) List(ctx context.Context, q repository.SerialQuery) (erp.ListPage[repository.ProductSerial], error) {
	return s.repo.List(ctx, q)
}

// Get returns one serial.
func (s *SerialService) Get(ctx context.Context, id int64) (repository.ProductSerial, error) {
	return s.repo.GetByID(ctx, id)
}

// Create creates a serial.
func (s *SerialService) Create(ctx context.Context, serial repository.ProductSerial) (repository.ProductSerial, error) {
	if serial.SerialNumber == "" {
		return repository.ProductSerial{}, errors.BadRequest("serial_number is required")
	}
	if serial.Status == "" {
		serial.Status = repository.SerialStatusAvailable
	}
	if !repository.ValidSerialStatus(serial.Status) {
		return repository.ProductSerial{}, errors.BadRequest(fmt.Sprintf("unknown serial status %q", serial.Status))
	}
	return s.repo.Create(ctx, serial)
}

// Update applies a partial update to a serial.
func (s *SerialService) Update(ctx context.Context, id int64, fields map[string]any) (repository.ProductSerial, error) {
	return s.repo.Update(ctx, id, fields)
}

// Delete removes a serial.
func (s *SerialService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ChangeStatus sets a serial's status. Any known status is accepted
// regardless of the current one.
func (s *SerialService) ChangeStatus(ctx context.Context, id int64, status string) (repository.ProductSerial, error) {
	if !repository.ValidSerialStatus(status) {
		return repository.ProductSerial{}, errors.BadRequest(fmt.Sprintf("unknown serial status %q", status))
	}
	return s.repo.Update(ctx, id, map[string]any{"status": status})
}

// TransferToWarehouse moves a serial to another warehouse. The move forces
// the status to "In Transit" as a side effect.
func (s *SerialService) TransferToWarehouse(ctx context.Context, id, warehouseID int64) (repository.ProductSerial, error) {
	if warehouseID <= 0 {
		return repository.ProductSerial{}, errors.BadRequest("warehouse id is required")
	}
	serial, err := s.repo.Update(ctx, id, map[string]any{
		"currentWarehouseId": warehouseID,
		"status":             repository.SerialStatusInTransit,
	})
	if err != nil {
		return repository.ProductSerial{}, err
	}
	s.logger.Info().
		Int64("serial", id).
		Int64("warehouse", warehouseID).
		Msg("serial in transit")
	return serial, nil
}

// IsAvailable looks a unit up by serial number and reports whether its
// status is Available.
func (s *SerialService) IsAvailable(ctx context.Context, serialNumber string) (bool, repository.ProductSerial, error) {
	if serialNumber == "" {
		return false, repository.ProductSerial{}, errors.BadRequest("serial number is required")
	}
	serials, err := s.repo.ListAll(ctx, repository.SerialQuery{SerialNumber: serialNumber})
	if err != nil {
		return false, repository.ProductSerial{}, err
	}
	for _, serial := range serials {
		if serial.SerialNumber == serialNumber {
			return serial.Status == repository.SerialStatusAvailable, serial, nil
		}
	}
	return false, repository.ProductSerial{}, errors.NotFound("serial")
}

// BulkCreate creates serials one by one, stopping at the first failure.
// Prior successes are not rolled back; the error details report how far the
// batch got.
func (s *SerialService) BulkCreate(ctx context.Context, serials []repository.ProductSerial) (BulkResult[repository.ProductSerial], error) {
	if len(serials) == 0 {
		return BulkResult[repository.ProductSerial]{}, errors.BadRequest("bulk create requires at least one serial")
	}

	result := BulkResult[repository.ProductSerial]{Created: make([]repository.ProductSerial, 0, len(serials))}
	for i, serial := range serials {
		created, err := s.Create(ctx, serial)
		if err != nil {
			result.FailedIndex = i
			result.FailedError = err.Error()
			s.logger.Warn().
				Int("index", i).
				Int("created", len(result.Created)).
				Err(err).
				Msg("bulk serial creation aborted, prior creates remain")
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
