package service

import (
	"context"
	"fmt"

	"github.com/negobi/negobi-gateway/internal/inventory/repository"
	"github.com/negobi/negobi-gateway/pkg/erp"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/logger"
	"github.com/negobi/negobi-gateway/pkg/saga"
)

// Stock level classifications.
const (
	StockLevelOut    = "OUT_OF_STOCK"
	StockLevelLow    = "LOW"
	StockLevelHigh   = "HIGH"
	StockLevelNormal = "NORMAL"
)

// StockAnalysis is the derived view of one stock row.
type StockAnalysis struct {
	AvailableStock     float64 `json:"available_stock"`
	ReservedStock      float64 `json:"reserved_stock"`
	IncomingStock      float64 `json:"incoming_stock"`
	TotalPhysicalStock float64 `json:"total_physical_stock"`
	StockLevel         string  `json:"stock_level"`
	NeedsReplenishment bool    `json:"needs_replenishment"`
	ReorderQuantity    float64 `json:"reorder_quantity"`
}

// StockItem pairs a stock row with its analysis for list endpoints.
type StockItem struct {
	repository.StockRecord
	Analysis StockAnalysis `json:"analysis"`
}

// StockService computes stock availability and coordinates transfers.
type StockService struct {
	repo   *repository.StockRepository
	sagas  *saga.Runner
	logger *logger.Logger
}

// NewStockService creates a stock service.
func NewStockService(repo *repository.StockRepository, sagas *saga.Runner, log *logger.Logger) *StockService {
	return &StockService{
		repo:   repo,
		sagas:  sagas,
		logger: log.WithComponent("stock"),
	}
}

// AvailableStock returns the sellable quantity of a stock row.
func AvailableStock(rec repository.StockRecord) float64 {
	available := rec.Stock - rec.ReserveStock
	if available < 0 {
		return 0
	}
	return available
}

// HasSufficientStock reports whether a row can cover qty units.
func HasSufficientStock(rec repository.StockRecord, qty float64) bool {
	return AvailableStock(rec) >= qty
}

// AnalyzeStockLevel classifies one stock row. Rules are evaluated in order:
// out of stock, low (against min_stock), high (against max_stock), normal.
func AnalyzeStockLevel(rec repository.StockRecord) StockAnalysis {
	available := AvailableStock(rec)
	analysis := StockAnalysis{
		AvailableStock:     available,
		ReservedStock:      rec.ReserveStock,
		IncomingStock:      rec.IncomingStock,
		TotalPhysicalStock: rec.Stock,
		StockLevel:         StockLevelNormal,
	}

	switch {
	case available == 0:
		analysis.StockLevel = StockLevelOut
		analysis.NeedsReplenishment = true
		if rec.MaxStock > 0 {
			analysis.ReorderQuantity = rec.MaxStock
		}
	case rec.MinStock > 0 && available <= rec.MinStock:
		analysis.StockLevel = StockLevelLow
		analysis.NeedsReplenishment = true
		if rec.MaxStock > 0 {
			analysis.ReorderQuantity = rec.MaxStock - available
		}
	case rec.MaxStock > 0 && available >= rec.MaxStock:
		analysis.StockLevel = StockLevelHigh
	}

	return analysis
}

// List returns one page of stock rows with their analyses.
func (s *StockService) List(ctx context.Context, q repository.StockQuery) (erp.ListPage[StockItem], error) {
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return erp.ListPage[StockItem]{}, err
	}
	items := make([]StockItem, len(page.Items))
	for i, rec := range page.Items {
		items[i] = StockItem{StockRecord: rec, Analysis: AnalyzeStockLevel(rec)}
	}
	return erp.ListPage[StockItem]{
		Items:      items,
		Total:      page.Total,
		TotalPages: page.TotalPages,
		Paginated:  page.Paginated,
	}, nil
}

// Get returns one stock row with its analysis.
func (s *StockService) Get(ctx context.Context, id int64) (StockItem, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return StockItem{}, err
	}
	return StockItem{StockRecord: rec, Analysis: AnalyzeStockLevel(rec)}, nil
}

// Create creates a stock row.
func (s *StockService) Create(ctx context.Context, rec repository.StockRecord) (repository.StockRecord, error) {
	return s.repo.Create(ctx, rec)
}

// Update applies a partial update to a stock row.
func (s *StockService) Update(ctx context.Context, id int64, fields map[string]any) (repository.StockRecord, error) {
	return s.repo.Update(ctx, id, fields)
}

// Delete removes a stock row.
func (s *StockService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// LowStockItems returns every row classified LOW.
func (s *StockService) LowStockItems(ctx context.Context, q repository.StockQuery) ([]StockItem, error) {
	return s.filterByLevel(ctx, q, StockLevelLow)
}

// OutOfStockItems returns every row classified OUT_OF_STOCK.
func (s *StockService) OutOfStockItems(ctx context.Context, q repository.StockQuery) ([]StockItem, error) {
	return s.filterByLevel(ctx, q, StockLevelOut)
}

func (s *StockService) filterByLevel(ctx context.Context, q repository.StockQuery, level string) ([]StockItem, error) {
	records, err := s.repo.ListAll(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]StockItem, 0)
	for _, rec := range records {
		analysis := AnalyzeStockLevel(rec)
		if analysis.StockLevel == level {
			items = append(items, StockItem{StockRecord: rec, Analysis: analysis})
		}
	}
	return items, nil
}

// TransferResult reports the post-transfer balances.
type TransferResult struct {
	FromID    int64   `json:"from_id"`
	ToID      int64   `json:"to_id"`
	Quantity  float64 `json:"quantity"`
	FromStock float64 `json:"from_stock"`
	ToStock   float64 `json:"to_stock"`
}

// Transfer moves qty units between two stock rows as two sequential upstream
// updates. The subtract step records a compensation that restores the source
// balance if the add step fails. Not transactional: a concurrent reader can
// observe the intermediate state between the two updates.
func (s *StockService) Transfer(ctx context.Context, fromID, toID int64, qty float64) (TransferResult, error) {
	if qty <= 0 {
		return TransferResult{}, errors.BadRequest("transfer quantity must be positive")
	}
	if fromID == toID {
		return TransferResult{}, errors.BadRequest("source and destination must differ")
	}

	src, err := s.repo.GetByID(ctx, fromID)
	if err != nil {
		return TransferResult{}, err
	}
	dst, err := s.repo.GetByID(ctx, toID)
	if err != nil {
		return TransferResult{}, err
	}
	if !HasSufficientStock(src, qty) {
		return TransferResult{}, errors.Conflict(
			fmt.Sprintf("insufficient stock: %.2f available, %.2f requested", AvailableStock(src), qty))
	}

	srcBefore := src.Stock
	err = s.sagas.Run(ctx, "stock-transfer",
		saga.Step{
			Name: "subtract-from-source",
			Action: func(ctx context.Context) error {
				_, err := s.repo.SetStock(ctx, fromID, srcBefore-qty)
				return err
			},
			Compensate: func(ctx context.Context) error {
				_, err := s.repo.SetStock(ctx, fromID, srcBefore)
				return err
			},
		},
		saga.Step{
			Name: "add-to-destination",
			Action: func(ctx context.Context) error {
				_, err := s.repo.SetStock(ctx, toID, dst.Stock+qty)
				return err
			},
		},
	)
	if err != nil {
		return TransferResult{}, err
	}

	s.logger.Info().
		Int64("from", fromID).
		Int64("to", toID).
		Float64("qty", qty).
		Msg("stock transferred")

	return TransferResult{
		FromID:    fromID,
		ToID:      toID,
		Quantity:  qty,
		FromStock: srcBefore - qty,
		ToStock:   dst.Stock + qty,
	}, nil
}

// Sync bulk-upserts ERP-tagged stock rows.
func (s *StockService) Sync(ctx context.Context, rows []repository.SyncRow) (repository.SyncResult, error) {
	if len(rows) == 0 {
		return repository.SyncResult{}, errors.BadRequest("sync requires at least one row")
	}
	for i, row := range rows {
		if row.ErpCodeProduct == "" || row.ErpCodeWarehouse == "" {
			return repository.SyncResult{}, errors.BadRequest(
				fmt.Sprintf("sync row %d is missing erp_code_product or erp_code_warehouse", i))
		}
	}
	return s.repo.Sync(ctx, rows)
}
