package seed_test

import (
	"context"
	"testing"

	"stockhub/internal/config"
	"stockhub/internal/dto"
	"stockhub/internal/model"
	"stockhub/internal/repository"
	"stockhub/internal/seed"
	"stockhub/internal/service"
	"stockhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SeedsCatalogOnceWithConsistentLedger(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{JWTSecret: "seed-secret", JWTExpirationHours: 1}
	ctx := context.Background()

	res, err := seed.Run(ctx, db, cfg)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.Admin.Role)
	assert.Equal(t, model.RoleStaff, res.Staff.Role)
	assert.Equal(t, 2, res.Products)
	require.NotNil(t, res.PurchaseID)

	// Lens Cleaner: 10 initial + 20 purchased. Frame Classic Black: 5 purchased.
	var quantities []int
	require.NoError(t, db.Model(&model.Stock{}).Order("quantity DESC").Pluck("quantity", &quantities).Error)
	assert.Equal(t, []int{30, 5, 0}, quantities)

	stockSvc := service.NewStockService(repository.NewStockRepository(db), nil)
	var stocks []model.Stock
	require.NoError(t, db.Find(&stocks).Error)
	for _, s := range stocks {
		entries, err := stockSvc.Ledger(ctx, s.ID)
		require.NoError(t, err)
		assert.NoError(t, service.VerifyLedger(s.Quantity, entries))
	}

	again, err := seed.Run(ctx, db, cfg)
	require.NoError(t, err)
	assert.Zero(t, again.Products)
	assert.Nil(t, again.PurchaseID)
	assert.Equal(t, res.Admin.ID, again.Admin.ID)

	var purchases int64
	require.NoError(t, db.Model(&model.Purchase{}).Count(&purchases).Error)
	assert.EqualValues(t, 1, purchases)
}

func TestRun_DemoUsersCanLogIn(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := &config.Config{JWTSecret: "seed-secret", JWTExpirationHours: 1}
	ctx := context.Background()
	_, err := seed.Run(ctx, db, cfg)
	require.NoError(t, err)

	auth := service.NewAuthService(repository.NewUserRepository(db), cfg)
	for _, email := range []string{seed.AdminEmail, seed.StaffEmail} {
		resp, err := auth.Login(ctx, dto.LoginRequest{Email: email, Password: seed.DemoPassword})
		require.NoError(t, err, email)
		assert.NotEmpty(t, resp.AccessToken)
	}
}
