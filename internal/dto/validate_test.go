package dto_test

import (
	"errors"
	"testing"

	"stockhub/internal/apperror"
	"stockhub/internal/dto"
	"stockhub/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fieldErrors(t *testing.T, err error) dto.FieldErrors {
	t.Helper()
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	var fields dto.FieldErrors
	require.True(t, errors.As(err, &fields), "expected field errors, got %v", err)
	return fields
}

func TestValidate_DecimalRules(t *testing.T) {
	item := dto.PurchaseItemInput{ProductID: ptr("0b6f7f4e-3f7b-4a53-9d1b-5a4f0f1b2c3d"), Quantity: 1, Price: decimal.Zero}
	fields := fieldErrors(t, dto.Validate(dto.CreatePurchaseRequest{
		SupplierID: "0b6f7f4e-3f7b-4a53-9d1b-5a4f0f1b2c3d",
		Items:      []dto.PurchaseItemInput{item},
	}))
	assert.Equal(t, "required", fields["items[0].price"])
}

func TestValidate_RunsCheckAfterTags(t *testing.T) {
	err := dto.Validate(dto.CreateProductRequest{
		Name:       "Frame Classic",
		Type:       model.ProductTypeVariable,
		CategoryID: "0b6f7f4e-3f7b-4a53-9d1b-5a4f0f1b2c3d",
		BrandID:    "0b6f7f4e-3f7b-4a53-9d1b-5a4f0f1b2c3d",
		Price:      ptr(decimal.NewFromInt(10)),
		Variants: []dto.VariantInput{{
			VariantTypeID: "0b6f7f4e-3f7b-4a53-9d1b-5a4f0f1b2c3d", Value: "Black", SKU: "FC-BLK",
		}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "top-level price")
}

func TestCreateProductRequest_Check(t *testing.T) {
	variant := dto.VariantInput{VariantTypeID: "x", Value: "Black", SKU: "FC-BLK"}
	cases := []struct {
		name string
		req  dto.CreateProductRequest
		ok   bool
	}{
		{"simple ok", dto.CreateProductRequest{Type: model.ProductTypeSimple, SKU: ptr("A"), Price: ptr(decimal.NewFromInt(1))}, true},
		{"simple without sku", dto.CreateProductRequest{Type: model.ProductTypeSimple, Price: ptr(decimal.NewFromInt(1))}, false},
		{"simple without price", dto.CreateProductRequest{Type: model.ProductTypeSimple, SKU: ptr("A")}, false},
		{"simple with variants", dto.CreateProductRequest{Type: model.ProductTypeSimple, SKU: ptr("A"), Price: ptr(decimal.NewFromInt(1)), Variants: []dto.VariantInput{variant}}, false},
		{"variable ok", dto.CreateProductRequest{Type: model.ProductTypeVariable, Variants: []dto.VariantInput{variant}}, true},
		{"variable without variants", dto.CreateProductRequest{Type: model.ProductTypeVariable}, false},
		{"variable with sku", dto.CreateProductRequest{Type: model.ProductTypeVariable, SKU: ptr("A"), Variants: []dto.VariantInput{variant}}, false},
		{"variable with stock", dto.CreateProductRequest{Type: model.ProductTypeVariable, Stock: ptr(1), Variants: []dto.VariantInput{variant}}, false},
		{"variant id on create", dto.CreateProductRequest{Type: model.ProductTypeVariable, Variants: []dto.VariantInput{{ID: ptr("x")}}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Check()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			}
		})
	}
}

func TestUpdateProductRequest_Check(t *testing.T) {
	assert.NoError(t, dto.UpdateProductRequest{Type: model.ProductTypeVariable}.Check(), "nil variants leaves the set untouched")
	assert.Error(t, dto.UpdateProductRequest{Type: model.ProductTypeVariable, Variants: []dto.VariantInput{}}.Check())
	assert.Error(t, dto.UpdateProductRequest{Type: model.ProductTypeSimple, Variants: []dto.VariantInput{{}}}.Check())
	assert.NoError(t, dto.UpdateProductRequest{Type: model.ProductTypeSimple, Stock: ptr(0)}.Check())
}

func TestPurchaseItems_Check(t *testing.T) {
	id := "0b6f7f4e-3f7b-4a53-9d1b-5a4f0f1b2c3d"
	assert.NoError(t, dto.CreatePurchaseRequest{Items: []dto.PurchaseItemInput{{ProductID: &id}}}.Check())
	assert.NoError(t, dto.CreatePurchaseRequest{Items: []dto.PurchaseItemInput{{ProductVariantID: &id}}}.Check())
	assert.Error(t, dto.CreatePurchaseRequest{Items: []dto.PurchaseItemInput{{}}}.Check())
	assert.Error(t, dto.CreatePurchaseRequest{Items: []dto.PurchaseItemInput{{ProductID: &id, ProductVariantID: &id}}}.Check())
	assert.Error(t, dto.UpdatePurchaseRequest{Items: []dto.PurchaseItemInput{}}.Check())
	assert.NoError(t, dto.UpdatePurchaseRequest{}.Check())
}

func TestTotalOf(t *testing.T) {
	items := []dto.PurchaseItemInput{
		{Quantity: 50, Price: decimal.RequireFromString("40000")},
		{Quantity: 3, Price: decimal.RequireFromString("0.35")},
	}
	assert.True(t, decimal.RequireFromString("2000001.05").Equal(dto.TotalOf(items)))
	assert.True(t, dto.TotalOf(nil).IsZero())
}

func TestDiscountRequests_Check(t *testing.T) {
	pct := model.DiscountPercentage
	fixed := model.DiscountFixed
	assert.Error(t, dto.CreateDiscountRequest{Type: pct, Value: decimal.NewFromInt(101)}.Check())
	assert.NoError(t, dto.CreateDiscountRequest{Type: pct, Value: decimal.NewFromInt(100)}.Check())
	assert.NoError(t, dto.CreateDiscountRequest{Type: fixed, Value: decimal.NewFromInt(5000)}.Check())
	assert.Error(t, dto.UpdateDiscountRequest{Type: &pct, Value: ptr(decimal.NewFromInt(150))}.Check())
	// Without the type the stored row decides; the reference service checks it.
	assert.NoError(t, dto.UpdateDiscountRequest{Value: ptr(decimal.NewFromInt(150))}.Check())
}

func TestPagination(t *testing.T) {
	p := dto.Pagination{Page: 3, Limit: 10}
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 3, p.TotalPages(21))
	assert.Equal(t, 0, p.TotalPages(0))

	n := dto.Pagination{Page: 0, Limit: 500}.Normalize()
	assert.Equal(t, dto.Pagination{Page: 1, Limit: 100}, n)

	page := dto.NewPage[int](nil, 0, p)
	assert.NotNil(t, page.Data)
	assert.Equal(t, 3, page.Page)

	fieldErrors(t, dto.Validate(dto.Pagination{Page: 1, Limit: 101}))
}
