//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"stockhub/internal/config"
	"stockhub/internal/dto"
	"stockhub/internal/infra"
	"stockhub/internal/model"
	"stockhub/internal/repository"
	"stockhub/internal/router"
	"stockhub/internal/seed"
	"stockhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

// ── Environment ───────────────────────────────────────────────────────────────

type e2eEnv struct {
	api   *api
	db    *gorm.DB
	admin string
	staff string
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("stockhub_test"),
		tcPostgres.WithUsername("stockhub"),
		tcPostgres.WithPassword("stockhub"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		JWTSecret:          "e2e-secret",
		JWTExpirationHours: 1,
		LowStockThreshold:  10,
		SummaryCacheTTL:    time.Minute,
		RateLimitPerMin:    10000,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DBOptions{MaxOpenConns: 10, MaxIdleConns: 5})
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	_, err = seed.Run(ctx, db, cfg)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	a := &api{t: t, engine: router.New(cfg, db, rdb)}
	return &e2eEnv{
		api:   a,
		db:    db,
		admin: e2eLogin(a, seed.AdminEmail),
		staff: e2eLogin(a, seed.StaffEmail),
	}
}

func e2eLogin(a *api, email string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/v1/auth/login", "", dto.LoginRequest{Email: email, Password: seed.DemoPassword})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[dto.LoginResponse](a.t, w).AccessToken
}

func itemFor(s dto.StockResponse, qty int) dto.PurchaseItemInput {
	in := dto.PurchaseItemInput{Quantity: qty, Price: decimal.NewFromInt(1000)}
	if s.Owner.VariantID != nil {
		in.ProductVariantID = s.Owner.VariantID
	} else {
		id := s.Owner.ProductID
		in.ProductID = &id
	}
	return in
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestE2E_HealthReportsRedis(t *testing.T) {
	env := setupE2E(t)
	w := env.api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"db":"connected","redis":"connected"}`, w.Body.String())
}

// Concurrent purchases against one stock row serialise on the row lock; no
// increment is lost and the ledger stays contiguous.
func TestE2E_ConcurrentPurchasesKeepLedger(t *testing.T) {
	env := setupE2E(t)
	a := env.api

	stocks := decode[[]dto.StockResponse](t, a.do(http.MethodGet, "/v1/stocks", env.staff, nil))
	require.NotEmpty(t, stocks)
	target := stocks[0]

	suppliers := decode[[]model.Supplier](t, a.do(http.MethodGet, "/v1/suppliers", env.staff, nil))
	require.NotEmpty(t, suppliers)

	const workers = 10
	var wg sync.WaitGroup
	codes := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := a.do(http.MethodPost, "/v1/purchases", env.staff, dto.CreatePurchaseRequest{
				SupplierID: suppliers[0].ID.String(),
				Items:      []dto.PurchaseItemInput{itemFor(target, 2)},
			})
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()
	for _, code := range codes {
		assert.Equal(t, http.StatusCreated, code)
	}

	stockID := uuid.MustParse(target.ID)
	repo := repository.NewStockRepository(env.db)
	stock, err := repo.FindByID(context.Background(), stockID)
	require.NoError(t, err)
	assert.Equal(t, target.Quantity+2*workers, stock.Quantity)

	ledger, err := service.NewStockService(repo, nil).Ledger(context.Background(), stockID)
	require.NoError(t, err)
	assert.NoError(t, service.VerifyLedger(stock.Quantity, ledger))
}

func TestE2E_DashboardCacheInvalidatedByAdjustment(t *testing.T) {
	env := setupE2E(t)
	a := env.api

	first := decode[dto.DashboardSummary](t, a.do(http.MethodGet, "/v1/dashboard/summary", env.staff, nil))
	cached := decode[dto.DashboardSummary](t, a.do(http.MethodGet, "/v1/dashboard/summary", env.staff, nil))
	assert.True(t, first.Stats.TotalStockValue.Equal(cached.Stats.TotalStockValue))

	stocks := decode[[]dto.StockResponse](t, a.do(http.MethodGet, "/v1/stocks", env.staff, nil))
	var priced dto.StockResponse
	for _, s := range stocks {
		if s.Owner.Price != nil && s.Quantity > 0 {
			priced = s
			break
		}
	}
	require.NotEmpty(t, priced.ID)

	w := a.do(http.MethodPatch, "/v1/stocks/adjust", env.staff, dto.AdjustStockRequest{
		StockID: priced.ID,
		Change:  -1,
		Type:    model.StockHistoryAdjustmentOut,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	after := decode[dto.DashboardSummary](t, a.do(http.MethodGet, "/v1/dashboard/summary", env.staff, nil))
	want := first.Stats.TotalStockValue.Sub(*priced.Owner.Price)
	assert.True(t, want.Equal(after.Stats.TotalStockValue), "want %s got %s", want, after.Stats.TotalStockValue)
}
