package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identity and timestamps shared by every mutable entity.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a uuid when the caller did not choose one.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Audit records which user created a row.
type Audit struct {
	CreatedByID *uuid.UUID `gorm:"type:uuid;index" json:"created_by_id,omitempty"`
}

// SetCreatedBy stamps the creating user; uuid.Nil means "system".
func (a *Audit) SetCreatedBy(id uuid.UUID) {
	if id == uuid.Nil {
		a.CreatedByID = nil
		return
	}
	a.CreatedByID = &id
}
