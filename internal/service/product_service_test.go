package service_test

import (
	"context"
	"testing"

	"stockhub/internal/apperror"
	"stockhub/internal/dto"
	"stockhub/internal/model"
	"stockhub/internal/service"
	"stockhub/internal/softdelete"
	"stockhub/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Create ────────────────────────────────────────────────────────────────────

func TestCreateProduct_SimpleWithStock(t *testing.T) {
	f := newFixture(t)
	p := f.simpleProduct(t, "CLN-1", "75000", 12)

	assert.Equal(t, model.ProductTypeSimple, p.Type)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 12, p.Stock.Quantity)
	require.NotNil(t, p.Category)
	assert.Equal(t, f.refs.Category.ID, p.Category.ID)
	require.NotNil(t, p.Brand)
	assert.Equal(t, f.refs.Actor, *p.CreatedByID)
	assert.True(t, testutil.Dec("75000").Equal(*p.Price))
}

func TestCreateProduct_VariableCreatesVariantsAndStocks(t *testing.T) {
	f := newFixture(t)
	p := f.variableProduct(t, f.variant("Black", "FC-BLK", 3), f.variant("Brown", "FC-BRN", 0))

	assert.Nil(t, p.Stock)
	assert.Nil(t, p.SKU)
	require.Len(t, p.Variants, 2)
	total := 0
	for _, v := range p.Variants {
		require.NotNil(t, v.Stock, "variant %s", v.SKU)
		require.NotNil(t, v.VariantType)
		total += v.Stock.Quantity
	}
	assert.Equal(t, 3, total)
	f.requireReconstructs(t)
}

func TestCreateProduct_VariableWithoutVariantsRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.products.Create(context.Background(), f.refs.Actor, dto.CreateProductRequest{
		Name:       "Frame Classic",
		Type:       model.ProductTypeVariable,
		CategoryID: f.refs.Category.ID.String(),
		BrandID:    f.refs.Brand.ID.String(),
	})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	n, err := repositoryCount[model.Product](f)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateProduct_SimpleWithoutSKURejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.products.Create(context.Background(), f.refs.Actor, dto.CreateProductRequest{
		Name:       "Lens Cleaner",
		Type:       model.ProductTypeSimple,
		CategoryID: f.refs.Category.ID.String(),
		BrandID:    f.refs.Brand.ID.String(),
		Price:      testutil.Ptr(testutil.Dec("100")),
	})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCreateProduct_DuplicateSKUAcrossFamiliesIsConflict(t *testing.T) {
	f := newFixture(t)
	f.simpleProduct(t, "DUP-1", "100", 0)

	_, err := f.products.Create(context.Background(), f.refs.Actor, dto.CreateProductRequest{
		Name:       "Frame Classic",
		Type:       model.ProductTypeVariable,
		CategoryID: f.refs.Category.ID.String(),
		BrandID:    f.refs.Brand.ID.String(),
		Variants:   []dto.VariantInput{f.variant("Black", "DUP-1", 1)},
	})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestCreateProduct_FailedVariantRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	bad := f.variant("Brown", "FC-BRN", 1)
	bad.VariantTypeID = uuid.NewString()

	_, err := f.products.Create(context.Background(), f.refs.Actor, dto.CreateProductRequest{
		Name:       "Frame Classic",
		Type:       model.ProductTypeVariable,
		CategoryID: f.refs.Category.ID.String(),
		BrandID:    f.refs.Brand.ID.String(),
		Variants:   []dto.VariantInput{f.variant("Black", "FC-BLK", 1), bad},
	})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	for _, count := range []func() (int64, error){
		func() (int64, error) { return repositoryCount[model.Product](f) },
		func() (int64, error) { return repositoryCount[model.ProductVariant](f) },
		func() (int64, error) { return repositoryCount[model.Stock](f) },
		func() (int64, error) { return repositoryCount[model.StockHistory](f) },
	} {
		n, err := count()
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}

func TestCreateProduct_DeletedCategoryIsNotFound(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Delete(&f.refs.Category).Error)

	_, err := f.products.Create(context.Background(), f.refs.Actor, dto.CreateProductRequest{
		Name:       "Lens Cleaner",
		Type:       model.ProductTypeSimple,
		CategoryID: f.refs.Category.ID.String(),
		BrandID:    f.refs.Brand.ID.String(),
		SKU:        testutil.Ptr("CLN-1"),
		Price:      testutil.Ptr(testutil.Dec("100")),
	})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestCreateProduct_WithDiscounts(t *testing.T) {
	f := newFixture(t)
	d := model.Discount{Name: "Promo", Type: model.DiscountPercentage, Value: testutil.Dec("10"), IsActive: true}
	require.NoError(t, f.db.Create(&d).Error)

	p, err := f.products.Create(context.Background(), f.refs.Actor, dto.CreateProductRequest{
		Name:        "Lens Cleaner",
		Type:        model.ProductTypeSimple,
		CategoryID:  f.refs.Category.ID.String(),
		BrandID:     f.refs.Brand.ID.String(),
		DiscountIDs: []string{d.ID.String(), d.ID.String()},
		SKU:         testutil.Ptr("CLN-1"),
		Price:       testutil.Ptr(testutil.Dec("100")),
	})
	require.NoError(t, err)
	require.Len(t, p.Discounts, 1)
	assert.Equal(t, d.ID, p.Discounts[0].ID)
}

// ── Update ────────────────────────────────────────────────────────────────────

func TestUpdateProduct_SimpleOverwritesStockThroughLedger(t *testing.T) {
	f := newFixture(t)
	p := f.simpleProduct(t, "CLN-1", "75000", 10)

	updated, err := f.products.Update(context.Background(), f.refs.Actor, p.ID, dto.UpdateProductRequest{
		Type:  model.ProductTypeSimple,
		Name:  testutil.Ptr("Lens Cleaner XL"),
		Price: testutil.Ptr(testutil.Dec("80000")),
		Stock: testutil.Ptr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lens Cleaner XL", updated.Name)
	assert.True(t, testutil.Dec("80000").Equal(*updated.Price))
	assert.Equal(t, 4, updated.Stock.Quantity)

	entries := f.ledger(t, p.Stock.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, -6, entries[1].Change)
	assert.Equal(t, model.StockHistoryAdjustmentOut, entries[1].Type)
	assert.Equal(t, service.StockOverwriteNote, *entries[1].Notes)
	f.requireReconstructs(t)
}

func TestUpdateProduct_TypeChangeRejected(t *testing.T) {
	f := newFixture(t)
	p := f.simpleProduct(t, "CLN-1", "75000", 1)

	_, err := f.products.Update(context.Background(), f.refs.Actor, p.ID, dto.UpdateProductRequest{
		Type:     model.ProductTypeVariable,
		Variants: []dto.VariantInput{f.variant("Black", "FC-BLK", 1)},
	})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdateProduct_DeletedProductIsNotFound(t *testing.T) {
	f := newFixture(t)
	p := f.simpleProduct(t, "CLN-1", "75000", 1)
	require.NoError(t, f.products.Delete(context.Background(), p.ID))

	_, err := f.products.Update(context.Background(), f.refs.Actor, p.ID, dto.UpdateProductRequest{
		Type: model.ProductTypeSimple,
		Name: testutil.Ptr("Renamed"),
	})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestUpdateProduct_VariantReconciliation(t *testing.T) {
	f := newFixture(t)
	p := f.variableProduct(t,
		f.variant("Black", "FC-BLK", 5),
		f.variant("Brown", "FC-BRN", 5),
		f.variant("Red", "FC-RED", 5),
	)
	require.Len(t, p.Variants, 3)
	byValue := map[string]model.ProductVariant{}
	for _, v := range p.Variants {
		byValue[v.Value] = v
	}
	removed := byValue["Black"]
	modified := byValue["Brown"]
	unchanged := byValue["Red"]

	mod := f.variant("Walnut", "FC-WAL", 9)
	mod.ID = testutil.Ptr(modified.ID.String())
	keep := f.variant("Red", "FC-RED", 5)
	keep.ID = testutil.Ptr(unchanged.ID.String())
	fresh := f.variant("Green", "FC-GRN", 2)

	updated, err := f.products.Update(context.Background(), f.refs.Actor, p.ID, dto.UpdateProductRequest{
		Type:     model.ProductTypeVariable,
		Variants: []dto.VariantInput{mod, keep, fresh},
	})
	require.NoError(t, err)

	require.Len(t, updated.Variants, 3)
	got := map[uuid.UUID]model.ProductVariant{}
	for _, v := range updated.Variants {
		require.NotNil(t, v.Stock, "variant %s has no stock", v.SKU)
		got[v.ID] = v
	}
	assert.NotContains(t, got, removed.ID)
	require.Contains(t, got, modified.ID)
	assert.Equal(t, "Walnut", got[modified.ID].Value)
	assert.Equal(t, "FC-WAL", got[modified.ID].SKU)
	assert.Equal(t, 9, got[modified.ID].Stock.Quantity)
	require.Contains(t, got, unchanged.ID)
	assert.Equal(t, 5, got[unchanged.ID].Stock.Quantity)

	var created *model.ProductVariant
	for _, v := range updated.Variants {
		if v.ID != modified.ID && v.ID != unchanged.ID {
			v := v
			created = &v
		}
	}
	require.NotNil(t, created)
	assert.Equal(t, "FC-GRN", created.SKU)
	assert.Equal(t, 2, created.Stock.Quantity)

	// The removed variant is soft-deleted, not gone.
	var raw model.ProductVariant
	require.NoError(t, f.db.Unscoped().First(&raw, "id = ?", removed.ID).Error)
	assert.True(t, raw.IsDeleted())
	f.requireReconstructs(t)
}

func TestUpdateProduct_VariantsSwapSKUs(t *testing.T) {
	f := newFixture(t)
	p := f.variableProduct(t, f.variant("Black", "FC-BLK", 1), f.variant("Brown", "FC-BRN", 2))
	byValue := map[string]model.ProductVariant{}
	for _, v := range p.Variants {
		byValue[v.Value] = v
	}

	black := f.variant("Black", "FC-BRN", 1)
	black.ID = testutil.Ptr(byValue["Black"].ID.String())
	brown := f.variant("Brown", "FC-BLK", 2)
	brown.ID = testutil.Ptr(byValue["Brown"].ID.String())

	updated, err := f.products.Update(context.Background(), f.refs.Actor, p.ID, dto.UpdateProductRequest{
		Type:     model.ProductTypeVariable,
		Variants: []dto.VariantInput{black, brown},
	})
	require.NoError(t, err)
	require.Len(t, updated.Variants, 2)
	for _, v := range updated.Variants {
		switch v.Value {
		case "Black":
			assert.Equal(t, "FC-BRN", v.SKU)
		case "Brown":
			assert.Equal(t, "FC-BLK", v.SKU)
		}
	}
	f.requireReconstructs(t)
}

func TestUpdateProduct_VariantsSharingSKUIsConflict(t *testing.T) {
	f := newFixture(t)
	p := f.variableProduct(t, f.variant("Black", "FC-BLK", 1), f.variant("Brown", "FC-BRN", 2))
	byValue := map[string]model.ProductVariant{}
	for _, v := range p.Variants {
		byValue[v.Value] = v
	}

	black := f.variant("Black", "FC-NEW", 1)
	black.ID = testutil.Ptr(byValue["Black"].ID.String())
	brown := f.variant("Brown", "FC-NEW", 2)
	brown.ID = testutil.Ptr(byValue["Brown"].ID.String())

	_, err := f.products.Update(context.Background(), f.refs.Actor, p.ID, dto.UpdateProductRequest{
		Type:     model.ProductTypeVariable,
		Variants: []dto.VariantInput{black, brown},
	})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	// The parked SKUs were rolled back with the rest.
	again, err := f.products.Get(context.Background(), p.ID)
	require.NoError(t, err)
	skus := []string{again.Variants[0].SKU, again.Variants[1].SKU}
	assert.ElementsMatch(t, []string{"FC-BLK", "FC-BRN"}, skus)
}

func TestUpdateProduct_UnknownVariantIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	p := f.variableProduct(t, f.variant("Black", "FC-BLK", 5))
	stray := f.variant("Brown", "FC-BRN", 1)
	stray.ID = testutil.Ptr(uuid.NewString())

	_, err := f.products.Update(context.Background(), f.refs.Actor, p.ID, dto.UpdateProductRequest{
		Type:     model.ProductTypeVariable,
		Variants: []dto.VariantInput{stray},
	})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	// Nothing was reconciled.
	again, err := f.products.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, again.Variants, 1)
	assert.Equal(t, "FC-BLK", again.Variants[0].SKU)
}

// ── Delete / Restore / Reads ─────────────────────────────────────────────────

func TestDeleteProduct_ThenRestore(t *testing.T) {
	f := newFixture(t)
	p := f.simpleProduct(t, "CLN-1", "75000", 1)
	ctx := context.Background()

	require.NoError(t, f.products.Delete(ctx, p.ID))
	require.NoError(t, f.products.Delete(ctx, p.ID), "deleting twice is a no-op")

	live, err := f.products.List(ctx, softdelete.Default)
	require.NoError(t, err)
	assert.Empty(t, live)

	all, err := f.products.List(ctx, softdelete.Options{IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsDeleted())

	got, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	restored, err := f.products.Restore(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
	assert.Equal(t, 1, restored.Stock.Quantity)

	_, err = f.products.Restore(ctx, p.ID)
	assert.Equal(t, apperror.KindInvariant, apperror.KindOf(err))
}

func TestDeleteProduct_Unknown(t *testing.T) {
	f := newFixture(t)
	err := f.products.Delete(context.Background(), uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestListProducts_ResolvesDeletedReferences(t *testing.T) {
	f := newFixture(t)
	f.simpleProduct(t, "CLN-1", "75000", 1)
	require.NoError(t, f.db.Delete(&f.refs.Brand).Error)

	list, err := f.products.List(context.Background(), softdelete.Default)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Brand)
	assert.True(t, list[0].Brand.IsDeleted())
}

func repositoryCount[T any](f *fixture) (int64, error) {
	var n int64
	err := f.db.Unscoped().Model(new(T)).Count(&n).Error
	return n, err
}
