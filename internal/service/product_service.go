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

// StockOverwriteNote is recorded when a product update overwrites a quantity.
const StockOverwriteNote = "Stock set by product update"

// ProductService is the catalog manager: the lifecycle of products and their
// variants, including the stock rows bound to them.
type ProductService interface {
	Create(ctx context.Context, actor uuid.UUID, req dto.CreateProductRequest) (*model.Product, error)
	Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, req dto.UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// Get finds deleted products too, for administrative visibility.
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, opts softdelete.Options) ([]model.Product, error)
}

type productService struct {
	repo  repository.ProductRepository
	refs  *repository.References
	stock StockService
	cache SummaryCache
}

func NewProductService(repo repository.ProductRepository, refs *repository.References, stock StockService, cache SummaryCache) ProductService {
	return &productService{repo: repo, refs: refs, stock: stock, cache: cache}
}

// ── Create ───────────────────────────────────────────────────────────────────
// One transaction:
//   1. Check category, brand and discounts are live
//   2. Create the product (SIMPLE: with its sku and price)
//   3. SIMPLE: create its stock; VARIABLE: create every variant and its stock

func (s *productService) Create(ctx context.Context, actor uuid.UUID, req dto.CreateProductRequest) (*model.Product, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	product := model.Product{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
	}
	product.SetCreatedBy(actor)

	var err error
	if product.CategoryID, err = parseID("category_id", req.CategoryID); err != nil {
		return nil, err
	}
	if product.BrandID, err = parseID("brand_id", req.BrandID); err != nil {
		return nil, err
	}
	discountIDs, err := parseIDs("discount_ids", req.DiscountIDs)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		refs := s.refs.WithTx(tx)
		if _, err := refs.Categories.FindByID(ctx, softdelete.Default, product.CategoryID); err != nil {
			return err
		}
		if _, err := refs.Brands.FindByID(ctx, softdelete.Default, product.BrandID); err != nil {
			return err
		}
		discounts, err := s.liveDiscounts(ctx, refs, discountIDs)
		if err != nil {
			return err
		}

		if product.Type == model.ProductTypeSimple {
			if err := s.requireFreeSKU(tx, *req.SKU, uuid.Nil); err != nil {
				return err
			}
			product.SKU = req.SKU
			product.Price = req.Price
		}
		if err := s.repo.CreateTx(tx, &product); err != nil {
			return err
		}
		if len(discounts) > 0 {
			if err := s.repo.ReplaceDiscountsTx(tx, &product, discounts); err != nil {
				return err
			}
		}

		if product.Type == model.ProductTypeSimple {
			_, err := s.stock.CreateTx(tx, model.StockOwner{ProductID: &product.ID}, intOr(req.Stock, 0))
			return err
		}
		for i := range req.Variants {
			if err := s.createVariant(ctx, tx, refs, actor, product.ID, req.Variants[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	invalidate(ctx, s.cache)

	log.Info().
		Str("product_id", product.ID.String()).
		Str("type", string(product.Type)).
		Int("variants", len(req.Variants)).
		Msg("product created")

	return s.repo.FindDetailed(ctx, softdelete.Default, product.ID)
}

func (s *productService) createVariant(ctx context.Context, tx *gorm.DB, refs *repository.References, actor, productID uuid.UUID, in dto.VariantInput) error {
	variantTypeID, err := parseID("variant_type_id", in.VariantTypeID)
	if err != nil {
		return err
	}
	if _, err := refs.VariantTypes.FindByID(ctx, softdelete.Default, variantTypeID); err != nil {
		return err
	}
	if err := s.requireFreeSKU(tx, in.SKU, uuid.Nil); err != nil {
		return err
	}
	variant := model.ProductVariant{
		ProductID:     productID,
		VariantTypeID: variantTypeID,
		Value:         in.Value,
		SKU:           in.SKU,
		Price:         in.Price,
	}
	variant.SetCreatedBy(actor)
	if err := s.repo.CreateVariantTx(tx, &variant); err != nil {
		return err
	}
	_, err = s.stock.CreateTx(tx, model.StockOwner{ProductVariantID: &variant.ID}, intOr(in.Stock, 0))
	return err
}

// ── Update ───────────────────────────────────────────────────────────────────
// One transaction:
//   1. Load the live product; the submitted type must match the stored one
//   2. Update scalar fields and, when given, the discount set
//   3. SIMPLE: overwrite the stock quantity when given
//   4. VARIABLE: reconcile variants by id when a variant list is given:
//      stored but not submitted → soft-deleted, submitted with id → updated,
//      submitted without id → created with a new stock row

func (s *productService) Update(ctx context.Context, actor uuid.UUID, id uuid.UUID, req dto.UpdateProductRequest) (*model.Product, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		refs := s.refs.WithTx(tx)
		product, err := s.repo.Products().WithTx(tx).FindByID(ctx, softdelete.Default, id)
		if err != nil {
			return err
		}
		if product.Type != req.Type {
			return apperror.Validation("product type cannot change from %s to %s", product.Type, req.Type)
		}

		fields, err := s.productFields(ctx, tx, refs, product, req)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateFieldsTx(tx, id, fields); err != nil {
			return err
		}
		if req.DiscountIDs != nil {
			discountIDs, err := parseIDs("discount_ids", req.DiscountIDs)
			if err != nil {
				return err
			}
			discounts, err := s.liveDiscounts(ctx, refs, discountIDs)
			if err != nil {
				return err
			}
			if err := s.repo.ReplaceDiscountsTx(tx, product, discounts); err != nil {
				return err
			}
		}

		switch product.Type {
		case model.ProductTypeSimple:
			if req.Stock != nil {
				return s.stock.SetQuantityTx(tx, model.StockOwner{ProductID: &product.ID}, *req.Stock, StockOverwriteNote)
			}
		case model.ProductTypeVariable:
			if req.Variants != nil {
				return s.reconcileVariants(ctx, tx, refs, actor, product.ID, req.Variants)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	invalidate(ctx, s.cache)

	log.Info().Str("product_id", id.String()).Msg("product updated")
	return s.repo.FindDetailed(ctx, softdelete.Default, id)
}

func (s *productService) productFields(ctx context.Context, tx *gorm.DB, refs *repository.References, product *model.Product, req dto.UpdateProductRequest) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.CategoryID != nil {
		categoryID, err := parseID("category_id", *req.CategoryID)
		if err != nil {
			return nil, err
		}
		if _, err := refs.Categories.FindByID(ctx, softdelete.Default, categoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = categoryID
	}
	if req.BrandID != nil {
		brandID, err := parseID("brand_id", *req.BrandID)
		if err != nil {
			return nil, err
		}
		if _, err := refs.Brands.FindByID(ctx, softdelete.Default, brandID); err != nil {
			return nil, err
		}
		fields["brand_id"] = brandID
	}
	if product.Type == model.ProductTypeSimple {
		if req.SKU != nil {
			if err := s.requireFreeSKU(tx, *req.SKU, product.ID); err != nil {
				return nil, err
			}
			fields["sku"] = *req.SKU
		}
		if req.Price != nil {
			fields["price"] = *req.Price
		}
	}
	return fields, nil
}

func (s *productService) reconcileVariants(ctx context.Context, tx *gorm.DB, refs *repository.References, actor, productID uuid.UUID, inputs []dto.VariantInput) error {
	existing, err := s.repo.LiveVariantIDsTx(tx, productID)
	if err != nil {
		return err
	}
	stored := make(map[uuid.UUID]bool, len(existing))
	for _, vid := range existing {
		stored[vid] = true
	}

	submitted := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if in.ID == nil {
			continue
		}
		vid, err := parseID("variants.id", *in.ID)
		if err != nil {
			return err
		}
		if !stored[vid] {
			return apperror.NotFound("product variant %s not found on product %s", vid, productID)
		}
		if submitted[vid] {
			return apperror.Validation("product variant %s submitted twice", vid)
		}
		submitted[vid] = true
	}

	variants := s.repo.Variants().WithTx(tx)
	for _, vid := range existing {
		if submitted[vid] {
			continue
		}
		if err := variants.Delete(ctx, softdelete.Default, vid); err != nil {
			return err
		}
	}
	if err := s.releaseChangedSKUs(ctx, tx, productID, inputs); err != nil {
		return err
	}

	for _, in := range inputs {
		if in.ID == nil {
			if err := s.createVariant(ctx, tx, refs, actor, productID, in); err != nil {
				return err
			}
			continue
		}
		vid := uuid.MustParse(*in.ID)
		if err := s.updateVariant(ctx, tx, refs, vid, in); err != nil {
			return err
		}
	}
	return nil
}

// releaseChangedSKUs parks the stored SKU of every surviving variant whose SKU
// the request changes, so SKUs can move between variants of one product in a
// single update. The final SKUs are checked and written by updateVariant.
func (s *productService) releaseChangedSKUs(ctx context.Context, tx *gorm.DB, productID uuid.UUID, inputs []dto.VariantInput) error {
	live, err := s.repo.Variants().WithTx(tx).Find(ctx, softdelete.Default, func(q *gorm.DB) *gorm.DB {
		return q.Where("product_id = ?", productID)
	})
	if err != nil {
		return err
	}
	stored := make(map[uuid.UUID]string, len(live))
	for _, v := range live {
		stored[v.ID] = v.SKU
	}
	for _, in := range inputs {
		if in.ID == nil {
			continue
		}
		vid := uuid.MustParse(*in.ID)
		if stored[vid] == in.SKU {
			continue
		}
		if err := s.repo.UpdateVariantFieldsTx(tx, vid, map[string]interface{}{"sku": "~" + vid.String()}); err != nil {
			return err
		}
	}
	return nil
}

func (s *productService) updateVariant(ctx context.Context, tx *gorm.DB, refs *repository.References, id uuid.UUID, in dto.VariantInput) error {
	variantTypeID, err := parseID("variant_type_id", in.VariantTypeID)
	if err != nil {
		return err
	}
	if _, err := refs.VariantTypes.FindByID(ctx, softdelete.Default, variantTypeID); err != nil {
		return err
	}
	if err := s.requireFreeSKU(tx, in.SKU, id); err != nil {
		return err
	}
	fields := map[string]interface{}{
		"variant_type_id": variantTypeID,
		"value":           in.Value,
		"sku":             in.SKU,
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if err := s.repo.UpdateVariantFieldsTx(tx, id, fields); err != nil {
		return err
	}
	if in.Stock == nil {
		return nil
	}
	return s.stock.SetQuantityTx(tx, model.StockOwner{ProductVariantID: &id}, *in.Stock, StockOverwriteNote)
}

// ── Delete / Restore ─────────────────────────────────────────────────────────

// Delete soft-deletes a product. Deleting an already deleted product is a
// no-op that keeps the original deletion time.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	products := s.repo.Products()
	product, err := products.FindByID(ctx, softdelete.Options{IncludeDeleted: true}, id)
	if err != nil {
		return err
	}
	if product.IsDeleted() {
		return nil
	}
	if err := products.Delete(ctx, softdelete.Default, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache)
	log.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

func (s *productService) Restore(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if _, err := s.repo.Products().Restore(ctx, id); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache)
	log.Info().Str("product_id", id.String()).Msg("product restored")
	return s.repo.FindDetailed(ctx, softdelete.Default, id)
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.repo.FindDetailed(ctx, softdelete.Options{IncludeDeleted: true}, id)
}

func (s *productService) List(ctx context.Context, opts softdelete.Options) ([]model.Product, error) {
	return s.repo.List(ctx, opts)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *productService) liveDiscounts(ctx context.Context, refs *repository.References, ids []uuid.UUID) ([]model.Discount, error) {
	if len(ids) == 0 {
		return []model.Discount{}, nil
	}
	discounts, err := refs.Discounts.Find(ctx, softdelete.Default, func(q *gorm.DB) *gorm.DB {
		return q.Where("id IN ?", ids)
	})
	if err != nil {
		return nil, err
	}
	if len(discounts) != len(ids) {
		return nil, apperror.NotFound("discount not found")
	}
	return discounts, nil
}

func (s *productService) requireFreeSKU(tx *gorm.DB, sku string, exceptID uuid.UUID) error {
	taken, err := s.repo.SKUInUseTx(tx, sku, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict("sku %q is already in use", sku)
	}
	return nil
}

// parseIDs parses and de-duplicates a list of ids.
func parseIDs(field string, raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(field, r)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
