// Package seed fills an empty database with demo users, a small catalog and
// one purchase. Everything goes through the services so the demo stock is
// backed by a complete ledger.
package seed

import (
	"context"
	"fmt"

	"stockhub/internal/config"
	"stockhub/internal/dto"
	"stockhub/internal/model"
	"stockhub/internal/repository"
	"stockhub/internal/service"
	"stockhub/internal/softdelete"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Demo credentials created by Users.
const (
	AdminEmail   = "admin@stockhub.local"
	StaffEmail   = "gudang@stockhub.local"
	DemoPassword = "stockhub123"
)

// Result summarises what a seed run wrote.
type Result struct {
	Admin      *dto.UserResponse
	Staff      *dto.UserResponse
	Products   int
	PurchaseID *uuid.UUID
}

// Run seeds users unconditionally (refreshing their password and role) and
// the demo catalog only when no product exists yet.
func Run(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Result, error) {
	auth := service.NewAuthService(repository.NewUserRepository(db), cfg)
	admin, err := auth.CreateUser(ctx, dto.CreateUserRequest{
		Name: "Admin", Email: AdminEmail, Password: DemoPassword, Role: model.RoleAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	staff, err := auth.CreateUser(ctx, dto.CreateUserRequest{
		Name: "Staff Gudang", Email: StaffEmail, Password: DemoPassword, Role: model.RoleStaff,
	})
	if err != nil {
		return nil, fmt.Errorf("seed staff: %w", err)
	}
	res := &Result{Admin: admin, Staff: staff}

	productRepo := repository.NewProductRepository(db)
	n, err := productRepo.Products().Count(ctx, softdelete.Options{IncludeDeleted: true})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		log.Info().Int64("products", n).Msg("catalog already present, skipping demo data")
		return res, nil
	}

	actor := uuid.MustParse(admin.ID)
	if err := catalog(ctx, db, actor, res); err != nil {
		return nil, err
	}
	return res, nil
}

func catalog(ctx context.Context, db *gorm.DB, actor uuid.UUID, res *Result) error {
	refs := repository.NewReferences(db)
	stock := service.NewStockService(repository.NewStockRepository(db), nil)
	products := service.NewProductService(repository.NewProductRepository(db), refs, stock, nil)
	purchases := service.NewPurchaseService(repository.NewPurchaseRepository(db), refs, stock, nil)

	active := true
	category := dto.CreateCategoryRequest{NamedRequest: dto.NamedRequest{Name: "Accessories", IsActive: &active}}.ToModel(actor)
	brand := dto.CreateBrandRequest{NamedRequest: dto.NamedRequest{Name: "Optika", IsActive: &active}}.ToModel(actor)
	color := dto.CreateVariantTypeRequest{NamedRequest: dto.NamedRequest{Name: "Color", IsActive: &active}}.ToModel(actor)
	phone := "+62 21 555 0100"
	supplier := dto.CreateSupplierRequest{Name: "PT Sumber Lensa", Phone: &phone}.ToModel(actor)

	if err := refs.Categories.Create(ctx, category); err != nil {
		return err
	}
	if err := refs.Brands.Create(ctx, brand); err != nil {
		return err
	}
	if err := refs.VariantTypes.Create(ctx, color); err != nil {
		return err
	}
	if err := refs.Suppliers.Create(ctx, supplier); err != nil {
		return err
	}

	sku := "LC-001"
	price := decimal.RequireFromString("25000")
	initial := 10
	cleaner, err := products.Create(ctx, actor, dto.CreateProductRequest{
		Name:       "Lens Cleaner",
		Type:       model.ProductTypeSimple,
		CategoryID: category.ID.String(),
		BrandID:    brand.ID.String(),
		SKU:        &sku,
		Price:      &price,
		Stock:      &initial,
	})
	if err != nil {
		return fmt.Errorf("seed lens cleaner: %w", err)
	}

	framePrice := decimal.RequireFromString("150000")
	frames, err := products.Create(ctx, actor, dto.CreateProductRequest{
		Name:       "Frame Classic",
		Type:       model.ProductTypeVariable,
		CategoryID: category.ID.String(),
		BrandID:    brand.ID.String(),
		Variants: []dto.VariantInput{
			{VariantTypeID: color.ID.String(), Value: "Black", SKU: "FC-BLK", Price: &framePrice},
			{VariantTypeID: color.ID.String(), Value: "Brown", SKU: "FC-BRN", Price: &framePrice},
		},
	})
	if err != nil {
		return fmt.Errorf("seed frames: %w", err)
	}
	res.Products = 2

	cleanerID := cleaner.ID.String()
	blackID := frames.Variants[0].ID.String()
	purchase, err := purchases.Create(ctx, actor, dto.CreatePurchaseRequest{
		SupplierID: supplier.ID.String(),
		Items: []dto.PurchaseItemInput{
			{ProductID: &cleanerID, Quantity: 20, Price: decimal.RequireFromString("15000")},
			{ProductVariantID: &blackID, Quantity: 5, Price: decimal.RequireFromString("90000")},
		},
	})
	if err != nil {
		return fmt.Errorf("seed purchase: %w", err)
	}
	res.PurchaseID = &purchase.ID

	log.Info().
		Int("products", res.Products).
		Str("invoice", purchase.InvoiceNumber).
		Msg("demo catalog seeded")
	return nil
}
