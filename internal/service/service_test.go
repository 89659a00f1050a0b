package service_test

import (
	"context"
	"testing"

	"stockhub/internal/dto"
	"stockhub/internal/model"
	"stockhub/internal/repository"
	"stockhub/internal/service"
	"stockhub/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	db        *gorm.DB
	refs      testutil.Refs
	stockRepo repository.StockRepository
	stock     service.StockService
	products  service.ProductService
	purchases service.PurchaseService
	cache     *fakeCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cache := &fakeCache{}
	refs := repository.NewReferences(db)
	stockRepo := repository.NewStockRepository(db)
	stock := service.NewStockService(stockRepo, cache)
	return &fixture{
		db:        db,
		refs:      testutil.SeedRefs(t, db),
		stockRepo: stockRepo,
		stock:     stock,
		products:  service.NewProductService(repository.NewProductRepository(db), refs, stock, cache),
		purchases: service.NewPurchaseService(repository.NewPurchaseRepository(db), refs, stock, cache),
		cache:     cache,
	}
}

func (f *fixture) simpleProduct(t *testing.T, sku string, price string, initial int) *model.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), f.refs.Actor, dto.CreateProductRequest{
		Name:       "Product " + sku,
		Type:       model.ProductTypeSimple,
		CategoryID: f.refs.Category.ID.String(),
		BrandID:    f.refs.Brand.ID.String(),
		SKU:        &sku,
		Price:      testutil.Ptr(testutil.Dec(price)),
		Stock:      &initial,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) variant(value, sku string, stock int) dto.VariantInput {
	return dto.VariantInput{
		VariantTypeID: f.refs.VariantType.ID.String(),
		Value:         value,
		SKU:           sku,
		Price:         testutil.Ptr(testutil.Dec("150000")),
		Stock:         &stock,
	}
}

func (f *fixture) variableProduct(t *testing.T, variants ...dto.VariantInput) *model.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), f.refs.Actor, dto.CreateProductRequest{
		Name:       "Frame Classic",
		Type:       model.ProductTypeVariable,
		CategoryID: f.refs.Category.ID.String(),
		BrandID:    f.refs.Brand.ID.String(),
		Variants:   variants,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) reloadStock(t *testing.T, id uuid.UUID) *model.Stock {
	t.Helper()
	s, err := f.stockRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (f *fixture) ledger(t *testing.T, stockID uuid.UUID) []model.StockHistory {
	t.Helper()
	entries, err := f.stock.Ledger(context.Background(), stockID)
	require.NoError(t, err)
	return entries
}

// requireReconstructs asserts the ledger of every stock replays to its quantity.
func (f *fixture) requireReconstructs(t *testing.T) {
	t.Helper()
	var stocks []model.Stock
	require.NoError(t, f.db.Find(&stocks).Error)
	for _, s := range stocks {
		require.NoError(t, service.VerifyLedger(s.Quantity, f.ledger(t, s.ID)), "stock %s", s.ID)
	}
}

// fakeCache counts invalidations and stores one value.
type fakeCache struct {
	value         interface{}
	invalidations int
	sets          int
}

func (c *fakeCache) Get(_ context.Context, dest interface{}) bool {
	if c.value == nil {
		return false
	}
	if d, ok := dest.(*dto.DashboardSummary); ok {
		*d = *c.value.(*dto.DashboardSummary)
		return true
	}
	return false
}

func (c *fakeCache) Set(_ context.Context, value interface{}) {
	c.value = value
	c.sets++
}

func (c *fakeCache) Invalidate(context.Context) {
	c.value = nil
	c.invalidations++
}
