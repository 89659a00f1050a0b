package service

import (
	"context"

	"stockhub/internal/apperror"
	"stockhub/internal/dto"
	"stockhub/internal/model"
	"stockhub/internal/repository"
	"stockhub/internal/softdelete"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InitialStockNote is recorded on the ledger entry that seeds a new stock row.
const InitialStockNote = "Initial stock"

// StockService is the stock ledger. ApplyDeltaTx is the only path that
// changes a quantity; every change it makes is mirrored by exactly one
// history row.
type StockService interface {
	// ApplyDeltaTx adds change to the stock quantity inside tx and appends the
	// matching history row. A result below zero is rejected with
	// apperror.ErrNegativeStock and leaves the row untouched.
	ApplyDeltaTx(tx *gorm.DB, stockID uuid.UUID, change int, typ model.StockHistoryType, notes string) (*model.StockHistory, error)
	// CreateTx creates the stock row of a new product or variant. A positive
	// initial quantity goes through the ledger as ADJUSTMENT_IN.
	CreateTx(tx *gorm.DB, owner model.StockOwner, initial int) (*model.Stock, error)
	// SetQuantityTx overwrites the quantity of an owner's stock, recording the
	// difference as an ADJUSTMENT_IN or ADJUSTMENT_OUT entry. An owner without
	// a stock row gets one.
	SetQuantityTx(tx *gorm.DB, owner model.StockOwner, quantity int, notes string) error
	// ResolveTx finds the stock of owner. Unless opts.IncludeDeleted is set a
	// deleted owner has no stock.
	ResolveTx(tx *gorm.DB, owner model.StockOwner, opts softdelete.Options) (*model.Stock, error)

	Adjust(ctx context.Context, req dto.AdjustStockRequest) (*dto.StockResponse, error)
	History(ctx context.Context, stockID uuid.UUID, p dto.Pagination) (*dto.Page[dto.StockHistoryResponse], error)
	Ledger(ctx context.Context, stockID uuid.UUID) ([]model.StockHistory, error)
	List(ctx context.Context) ([]dto.StockResponse, error)
}

type stockService struct {
	repo  repository.StockRepository
	cache SummaryCache
}

func NewStockService(repo repository.StockRepository, cache SummaryCache) StockService {
	return &stockService{repo: repo, cache: cache}
}

// ── Ledger primitive ─────────────────────────────────────────────────────────

func (s *stockService) ApplyDeltaTx(tx *gorm.DB, stockID uuid.UUID, change int, typ model.StockHistoryType, notes string) (*model.StockHistory, error) {
	if change == 0 {
		return nil, apperror.Validation("stock change must not be zero")
	}
	stock, err := s.repo.LockTx(tx, stockID)
	if err != nil {
		return nil, err
	}
	return s.apply(tx, stock, change, typ, notes)
}

// apply mutates a stock row already locked by the caller.
func (s *stockService) apply(tx *gorm.DB, stock *model.Stock, change int, typ model.StockHistoryType, notes string) (*model.StockHistory, error) {
	newQty := stock.Quantity + change
	if newQty < 0 {
		return nil, apperror.ErrNegativeStock
	}

	ok, err := s.repo.UpdateQuantityTx(tx, stock.ID, stock.Version, newQty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Conflict("stock %s was modified concurrently, retry the operation", stock.ID)
	}

	entry := &model.StockHistory{
		StockID:     stock.ID,
		Sequence:    stock.Version + 1,
		Change:      change,
		NewQuantity: newQty,
		Type:        typ,
	}
	if notes != "" {
		entry.Notes = &notes
	}
	if err := s.repo.AppendHistoryTx(tx, entry); err != nil {
		return nil, err
	}

	stock.Quantity = newQty
	stock.Version++
	return entry, nil
}

func (s *stockService) CreateTx(tx *gorm.DB, owner model.StockOwner, initial int) (*model.Stock, error) {
	if !owner.Valid() {
		return nil, apperror.Validation("stock owner must be exactly one of product or variant")
	}
	if initial < 0 {
		return nil, apperror.Validation("initial stock cannot be negative")
	}
	stock := &model.Stock{
		ProductID:        owner.ProductID,
		ProductVariantID: owner.ProductVariantID,
	}
	if err := s.repo.CreateTx(tx, stock); err != nil {
		return nil, err
	}
	if initial > 0 {
		if _, err := s.apply(tx, stock, initial, model.StockHistoryAdjustmentIn, InitialStockNote); err != nil {
			return nil, err
		}
	}
	return stock, nil
}

func (s *stockService) SetQuantityTx(tx *gorm.DB, owner model.StockOwner, quantity int, notes string) error {
	if quantity < 0 {
		return apperror.ErrNegativeStock
	}
	found, err := s.repo.FindByOwnerTx(tx, owner, softdelete.Options{IncludeDeleted: true})
	if apperror.Is(err, apperror.KindNotFound) {
		_, err = s.CreateTx(tx, owner, quantity)
		return err
	}
	if err != nil {
		return err
	}
	stock, err := s.repo.LockTx(tx, found.ID)
	if err != nil {
		return err
	}
	diff := quantity - stock.Quantity
	if diff == 0 {
		return nil
	}
	typ := model.StockHistoryAdjustmentIn
	if diff < 0 {
		typ = model.StockHistoryAdjustmentOut
	}
	_, err = s.apply(tx, stock, diff, typ, notes)
	return err
}

func (s *stockService) ResolveTx(tx *gorm.DB, owner model.StockOwner, opts softdelete.Options) (*model.Stock, error) {
	return s.repo.FindByOwnerTx(tx, owner, opts)
}

// ── Adjust ───────────────────────────────────────────────────────────────────

func (s *stockService) Adjust(ctx context.Context, req dto.AdjustStockRequest) (*dto.StockResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	stockID, err := parseID("stock_id", req.StockID)
	if err != nil {
		return nil, err
	}
	notes := ""
	if req.Notes != nil {
		notes = *req.Notes
	}

	var entry *model.StockHistory
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		stock, err := s.repo.LockTx(tx, stockID)
		if err != nil {
			return err
		}
		// The stock of a deleted product or variant is hidden.
		owner := model.StockOwner{ProductID: stock.ProductID, ProductVariantID: stock.ProductVariantID}
		if _, err := s.repo.FindByOwnerTx(tx, owner, softdelete.Default); err != nil {
			return err
		}
		entry, err = s.apply(tx, stock, req.Change, req.Type, notes)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	invalidate(ctx, s.cache)

	log.Info().
		Str("stock_id", stockID.String()).
		Int("change", entry.Change).
		Int("new_quantity", entry.NewQuantity).
		Str("type", string(entry.Type)).
		Msg("stock adjusted")

	stock, err := s.repo.FindByID(ctx, stockID)
	if err != nil {
		return nil, err
	}
	resp := dto.StockToResponse(stock)
	return &resp, nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *stockService) History(ctx context.Context, stockID uuid.UUID, p dto.Pagination) (*dto.Page[dto.StockHistoryResponse], error) {
	if err := dto.Validate(p); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, stockID); err != nil {
		return nil, err
	}
	rows, total, err := s.repo.History(ctx, stockID, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockHistoryResponse, len(rows))
	for i := range rows {
		out[i] = dto.HistoryToResponse(&rows[i])
	}
	page := dto.NewPage(out, total, p)
	return &page, nil
}

func (s *stockService) Ledger(ctx context.Context, stockID uuid.UUID) ([]model.StockHistory, error) {
	if _, err := s.repo.FindByID(ctx, stockID); err != nil {
		return nil, err
	}
	return s.repo.Ledger(ctx, stockID)
}

func (s *stockService) List(ctx context.Context) ([]dto.StockResponse, error) {
	stocks, err := s.repo.ListLive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, len(stocks))
	for i := range stocks {
		out[i] = dto.StockToResponse(&stocks[i])
	}
	return out, nil
}

// VerifyLedger checks that entries, in sequence order, replay from zero to
// quantity: sequences are contiguous from 1, every running total matches the
// recorded new quantity and none is negative.
func VerifyLedger(quantity int, entries []model.StockHistory) error {
	running := 0
	for i, e := range entries {
		if e.Sequence != i+1 {
			return apperror.Invariant("ledger gap: entry %d has sequence %d", i+1, e.Sequence)
		}
		running += e.Change
		if running < 0 {
			return apperror.Invariant("ledger goes negative at sequence %d", e.Sequence)
		}
		if running != e.NewQuantity {
			return apperror.Invariant("sequence %d records %d but replays to %d", e.Sequence, e.NewQuantity, running)
		}
	}
	if running != quantity {
		return apperror.Invariant("ledger replays to %d but stock holds %d", running, quantity)
	}
	return nil
}
