// Package testutil opens migrated in-memory databases and builds the fixtures
// shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"stockhub/internal/infra"
	"stockhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a private in-memory sqlite database with the full schema.
// A single connection keeps every statement on the same memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := infra.NewDatabase(dsn, infra.DBOptions{MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Refs are the reference rows most catalog tests need.
type Refs struct {
	Actor       uuid.UUID
	Category    model.Category
	Brand       model.Brand
	VariantType model.VariantType
	Supplier    model.Supplier
}

// SeedRefs inserts one live row of each reference entity.
func SeedRefs(t *testing.T, db *gorm.DB) Refs {
	t.Helper()
	ctx := context.Background()
	user := model.User{Name: "Tester", Email: uuid.NewString() + "@test.local", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, db.WithContext(ctx).Create(&user).Error)

	r := Refs{
		Actor:       user.ID,
		Category:    model.Category{Name: "Accessories", IsActive: true},
		Brand:       model.Brand{Name: "Optika", IsActive: true},
		VariantType: model.VariantType{Name: "Color", IsActive: true},
		Supplier:    model.Supplier{Name: "PT Sumber Lensa"},
	}
	require.NoError(t, db.Create(&r.Category).Error)
	require.NoError(t, db.Create(&r.Brand).Error)
	require.NoError(t, db.Create(&r.VariantType).Error)
	require.NoError(t, db.Create(&r.Supplier).Error)
	return r
}

// Dec parses a decimal literal.
func Dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
