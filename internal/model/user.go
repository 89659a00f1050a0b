package model

// Roles recognised by the API.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF_GUDANG"
)

// User is the actor recorded in audit fields.
type User struct {
	Base
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"not null" json:"role"`
}

// All lists every table-backed model in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Brand{},
		&VariantType{},
		&Discount{},
		&Supplier{},
		&Product{},
		&ProductVariant{},
		&Stock{},
		&StockHistory{},
		&Purchase{},
		&PurchaseItem{},
	}
}
