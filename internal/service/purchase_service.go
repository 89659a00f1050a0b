package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockhub/internal/apperror"
	"stockhub/internal/dto"
	"stockhub/internal/model"
	"stockhub/internal/repository"
	"stockhub/internal/softdelete"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const invoiceAttempts = 5

// PurchaseService records supplier purchases. Every item moves stock through
// the ledger inside the same transaction that writes the purchase.
type PurchaseService interface {
	Create(ctx context.Context, actor uuid.UUID, req dto.CreatePurchaseRequest) (*model.Purchase, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdatePurchaseRequest) (*model.Purchase, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	List(ctx context.Context, p dto.Pagination) (*dto.Page[dto.PurchaseSummary], error)
}

type purchaseService struct {
	repo   repository.PurchaseRepository
	refs   *repository.References
	ledger StockService
	cache  SummaryCache
	now    func() time.Time
}

func NewPurchaseService(repo repository.PurchaseRepository, refs *repository.References, ledger StockService, cache SummaryCache) PurchaseService {
	return &purchaseService{repo: repo, refs: refs, ledger: ledger, cache: cache, now: time.Now}
}

// ── Create ───────────────────────────────────────────────────────────────────
// One transaction:
//   1. Check the supplier is live
//   2. Insert the purchase with a fresh invoice number and the summed total
//   3. Per item: insert the line and add its quantity to the target stock

func (s *purchaseService) Create(ctx context.Context, actor uuid.UUID, req dto.CreatePurchaseRequest) (*model.Purchase, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	supplierID, err := parseID("supplier_id", req.SupplierID)
	if err != nil {
		return nil, err
	}

	purchase := model.Purchase{
		SupplierID:   supplierID,
		TotalAmount:  dto.TotalOf(req.Items),
		PurchaseDate: s.now().UTC(),
		Notes:        req.Notes,
	}
	if req.PurchaseDate != nil {
		purchase.PurchaseDate = req.PurchaseDate.UTC()
	}
	purchase.SetCreatedBy(actor)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.refs.WithTx(tx).Suppliers.FindByID(ctx, softdelete.Default, supplierID); err != nil {
			return err
		}
		invoice, err := s.nextInvoice(tx)
		if err != nil {
			return err
		}
		purchase.InvoiceNumber = invoice
		if err := s.repo.CreateTx(tx, &purchase); err != nil {
			return err
		}
		return s.receiveItems(tx, purchase.ID, req.Items, "Purchase "+invoice)
	})
	if txErr != nil {
		return nil, txErr
	}
	invalidate(ctx, s.cache)

	log.Info().
		Str("purchase_id", purchase.ID.String()).
		Str("invoice", purchase.InvoiceNumber).
		Str("total", purchase.TotalAmount.StringFixed(2)).
		Int("items", len(req.Items)).
		Msg("purchase recorded")

	return s.repo.FindDetailed(ctx, purchase.ID)
}

// nextInvoice returns an unused INV-YYYYMMDD-XXXXXXXX number.
func (s *purchaseService) nextInvoice(tx *gorm.DB) (string, error) {
	day := s.now().UTC().Format("20060102")
	for i := 0; i < invoiceAttempts; i++ {
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		invoice := fmt.Sprintf("INV-%s-%s", day, suffix)
		taken, err := s.repo.InvoiceExistsTx(tx, invoice)
		if err != nil {
			return "", err
		}
		if !taken {
			return invoice, nil
		}
	}
	return "", apperror.Conflict("could not allocate an invoice number, retry the operation")
}

// receiveItems writes each line and books its quantity as PURCHASE. The
// target stock must belong to a live product or variant.
func (s *purchaseService) receiveItems(tx *gorm.DB, purchaseID uuid.UUID, items []dto.PurchaseItemInput, notes string) error {
	for i, in := range items {
		owner, err := itemOwner(i, in)
		if err != nil {
			return err
		}
		stock, err := s.ledger.ResolveTx(tx, owner, softdelete.Default)
		if err != nil {
			return err
		}
		item := model.PurchaseItem{
			PurchaseID:       purchaseID,
			ProductID:        owner.ProductID,
			ProductVariantID: owner.ProductVariantID,
			Quantity:         in.Quantity,
			Price:            in.Price,
			Subtotal:         in.Subtotal(),
		}
		if err := s.repo.CreateItemTx(tx, &item); err != nil {
			return err
		}
		if _, err := s.ledger.ApplyDeltaTx(tx, stock.ID, in.Quantity, model.StockHistoryPurchase, notes); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	return nil
}

func itemOwner(i int, in dto.PurchaseItemInput) (model.StockOwner, error) {
	if in.ProductID != nil && *in.ProductID != "" {
		id, err := parseID(fmt.Sprintf("items[%d].product_id", i), *in.ProductID)
		return model.StockOwner{ProductID: &id}, err
	}
	id, err := parseID(fmt.Sprintf("items[%d].product_variant_id", i), *in.ProductVariantID)
	return model.StockOwner{ProductVariantID: &id}, err
}

// ── Update ───────────────────────────────────────────────────────────────────
// One transaction:
//   1. Lock the purchase and apply scalar changes (supplier, date, notes)
//   2. When items are given: reverse every stored item out of stock, drop the
//      stored lines, write the new lines and book them in, update the total

func (s *purchaseService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePurchaseRequest) (*model.Purchase, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		purchase, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if req.SupplierID != nil {
			supplierID, err := parseID("supplier_id", *req.SupplierID)
			if err != nil {
				return err
			}
			if _, err := s.refs.WithTx(tx).Suppliers.FindByID(ctx, softdelete.Default, supplierID); err != nil {
				return err
			}
			fields["supplier_id"] = supplierID
		}
		if req.PurchaseDate != nil {
			fields["purchase_date"] = req.PurchaseDate.UTC()
		}
		if req.Notes != nil {
			fields["notes"] = *req.Notes
		}

		if req.Items != nil {
			if err := s.reverseItems(tx, purchase); err != nil {
				return err
			}
			if err := s.repo.DeleteItemsTx(tx, purchase.ID); err != nil {
				return err
			}
			if err := s.receiveItems(tx, purchase.ID, req.Items, "Update of "+purchase.InvoiceNumber); err != nil {
				return err
			}
			fields["total_amount"] = dto.TotalOf(req.Items)
		}
		return s.repo.UpdateFieldsTx(tx, purchase.ID, fields)
	})
	if txErr != nil {
		return nil, txErr
	}
	invalidate(ctx, s.cache)

	log.Info().
		Str("purchase_id", id.String()).
		Bool("items_replaced", req.Items != nil).
		Msg("purchase updated")

	return s.repo.FindDetailed(ctx, id)
}

// reverseItems books every stored line of p back out of stock. Owners deleted
// since the purchase are still reversed.
func (s *purchaseService) reverseItems(tx *gorm.DB, p *model.Purchase) error {
	notes := "Reversal for update of " + p.InvoiceNumber
	for _, item := range p.Items {
		owner := model.StockOwner{ProductID: item.ProductID, ProductVariantID: item.ProductVariantID}
		stock, err := s.ledger.ResolveTx(tx, owner, softdelete.Options{IncludeDeleted: true})
		if err != nil {
			return err
		}
		if _, err := s.ledger.ApplyDeltaTx(tx, stock.ID, -item.Quantity, model.StockHistoryAdjustmentOut, notes); err != nil {
			return fmt.Errorf("reverse item %s: %w", item.ID, err)
		}
	}
	return nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *purchaseService) Get(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	return s.repo.FindDetailed(ctx, id)
}

func (s *purchaseService) List(ctx context.Context, p dto.Pagination) (*dto.Page[dto.PurchaseSummary], error) {
	if err := dto.Validate(p); err != nil {
		return nil, err
	}
	rows, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	page := dto.NewPage(rows, total, p)
	return &page, nil
}
