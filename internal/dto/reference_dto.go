package dto

import (
	"stockhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Suppliers ───────────────────────────────────────────────────────────────

type CreateSupplierRequest struct {
	Name    string  `json:"name"    validate:"required,min=3,max=150"`
	Phone   *string `json:"phone"   validate:"omitempty,min=6,max=30"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

func (r CreateSupplierRequest) ToModel(actor uuid.UUID) *model.Supplier {
	s := &model.Supplier{Name: r.Name, Phone: r.Phone, Address: r.Address}
	s.SetCreatedBy(actor)
	return s
}

type UpdateSupplierRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=3,max=150"`
	Phone   *string `json:"phone"   validate:"omitempty,min=6,max=30"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

func (r UpdateSupplierRequest) Fields() map[string]interface{} {
	f := map[string]interface{}{}
	if r.Name != nil {
		f["name"] = *r.Name
	}
	if r.Phone != nil {
		f["phone"] = *r.Phone
	}
	if r.Address != nil {
		f["address"] = *r.Address
	}
	return f
}

// ─── Named reference data (categories, brands, variant types) ────────────────

// NamedRequest is the payload shared by reference entities that only carry a
// unique name and an active flag.
type NamedRequest struct {
	Name     string `json:"name"      validate:"required,min=2,max=100"`
	IsActive *bool  `json:"is_active" validate:"required"`
}

type NamedPatch struct {
	Name     *string `json:"name"      validate:"omitempty,min=2,max=100"`
	IsActive *bool   `json:"is_active"`
}

func (r NamedPatch) Fields() map[string]interface{} {
	f := map[string]interface{}{}
	if r.Name != nil {
		f["name"] = *r.Name
	}
	if r.IsActive != nil {
		f["is_active"] = *r.IsActive
	}
	return f
}

type CreateCategoryRequest struct{ NamedRequest }

func (r CreateCategoryRequest) ToModel(actor uuid.UUID) *model.Category {
	c := &model.Category{Name: r.Name, IsActive: *r.IsActive}
	c.SetCreatedBy(actor)
	return c
}

type CreateBrandRequest struct{ NamedRequest }

func (r CreateBrandRequest) ToModel(actor uuid.UUID) *model.Brand {
	b := &model.Brand{Name: r.Name, IsActive: *r.IsActive}
	b.SetCreatedBy(actor)
	return b
}

type CreateVariantTypeRequest struct{ NamedRequest }

func (r CreateVariantTypeRequest) ToModel(actor uuid.UUID) *model.VariantType {
	v := &model.VariantType{Name: r.Name, IsActive: *r.IsActive}
	v.SetCreatedBy(actor)
	return v
}

// ─── Discounts ───────────────────────────────────────────────────────────────

type CreateDiscountRequest struct {
	Name     string             `json:"name"      validate:"required,min=3,max=100"`
	Type     model.DiscountType `json:"type"      validate:"required,oneof=PERCENTAGE FIXED"`
	Value    decimal.Decimal    `json:"value"     validate:"required,gt=0"`
	IsActive *bool              `json:"is_active" validate:"required"`
}

func (r CreateDiscountRequest) Check() error {
	return (&model.Discount{Type: r.Type, Value: r.Value}).Check()
}

func (r CreateDiscountRequest) ToModel(actor uuid.UUID) *model.Discount {
	d := &model.Discount{Name: r.Name, Type: r.Type, Value: r.Value, IsActive: *r.IsActive}
	d.SetCreatedBy(actor)
	return d
}

type UpdateDiscountRequest struct {
	Name     *string             `json:"name"      validate:"omitempty,min=3,max=100"`
	Type     *model.DiscountType `json:"type"      validate:"omitempty,oneof=PERCENTAGE FIXED"`
	Value    *decimal.Decimal    `json:"value"     validate:"omitempty,gt=0"`
	IsActive *bool               `json:"is_active"`
}

// Check catches a patch that is invalid on its own. A patch that only sets
// one of type and value is checked against the stored row on update.
func (r UpdateDiscountRequest) Check() error {
	if r.Type == nil || r.Value == nil {
		return nil
	}
	return (&model.Discount{Type: *r.Type, Value: *r.Value}).Check()
}

func (r UpdateDiscountRequest) Fields() map[string]interface{} {
	f := map[string]interface{}{}
	if r.Name != nil {
		f["name"] = *r.Name
	}
	if r.Type != nil {
		f["type"] = *r.Type
	}
	if r.Value != nil {
		f["value"] = *r.Value
	}
	if r.IsActive != nil {
		f["is_active"] = *r.IsActive
	}
	return f
}
