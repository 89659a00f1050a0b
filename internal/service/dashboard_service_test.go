package service_test

import (
	"context"
	"testing"

	"stockhub/internal/repository"
	"stockhub/internal/service"
	"stockhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardSummary_Figures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	low := f.simpleProduct(t, "LOW-1", "75000", 3)
	empty := f.simpleProduct(t, "EMP-1", "75000", 0)
	f.variableProduct(t, f.variant("Black", "FC-BLK", 10))
	gone := f.simpleProduct(t, "GONE-1", "99999", 1)
	require.NoError(t, f.products.Delete(ctx, gone.ID))
	purchase := f.purchase(t, productItem(empty.ID, 2, "10"))

	svc := service.NewDashboardService(repository.NewDashboardRepository(f.db), repository.NewPurchaseRepository(f.db), nil, 5)
	got, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, got.Stats.TotalProducts)
	assert.EqualValues(t, 1, got.Stats.TotalSuppliers)
	assert.EqualValues(t, 2, got.Stats.LowStockItemsCount)
	// 3×75000 + 2×75000 + 10×150000
	assert.True(t, testutil.Dec("1875000").Equal(got.Stats.TotalStockValue), "value %s", got.Stats.TotalStockValue)

	require.Len(t, got.RecentPurchases, 1)
	assert.Equal(t, purchase.InvoiceNumber, got.RecentPurchases[0].InvoiceNumber)

	require.Len(t, got.LowStockItems, 2)
	assert.Equal(t, empty.Stock.ID.String(), got.LowStockItems[0].ID)
	assert.Equal(t, low.Stock.ID.String(), got.LowStockItems[1].ID)
}

func TestDashboardSummary_EmptyDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewDashboardService(repository.NewDashboardRepository(db), repository.NewPurchaseRepository(db), nil, 5)

	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.Stats.TotalProducts)
	assert.True(t, got.Stats.TotalStockValue.IsZero())
	assert.NotNil(t, got.RecentPurchases)
	assert.Empty(t, got.LowStockItems)
}

func TestDashboardSummary_ServedFromCacheUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := service.NewDashboardService(repository.NewDashboardRepository(f.db), repository.NewPurchaseRepository(f.db), f.cache, 5)

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Zero(t, first.Stats.TotalProducts)
	assert.Equal(t, 1, f.cache.sets)

	cached, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets, "second read is a cache hit")
	assert.Equal(t, first.Stats, cached.Stats)

	f.simpleProduct(t, "CLN-1", "75000", 1)
	fresh, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fresh.Stats.TotalProducts)
	assert.Equal(t, 2, f.cache.sets)
}
