package service

import (
	"context"

	"stockhub/internal/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction. Any error returned by fn rolls
// the whole transaction back.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// SummaryCache stores the rendered dashboard summary. Every mutation that can
// change a figure on the dashboard invalidates it.
type SummaryCache interface {
	Get(ctx context.Context, dest interface{}) bool
	Set(ctx context.Context, value interface{})
	Invalidate(ctx context.Context)
}

func invalidate(ctx context.Context, cache SummaryCache) {
	if cache != nil {
		cache.Invalidate(ctx)
	}
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("%s is not a valid id", field)
	}
	return id, nil
}
