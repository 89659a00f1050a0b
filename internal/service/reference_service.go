package service

import (
	"context"

	"stockhub/internal/softdelete"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ReferenceService manages one family of reference data (suppliers,
// categories, brands, discounts, variant types). Payload validation happens in
// the DTO layer; the service owns persistence, soft delete and cache upkeep.
type ReferenceService[T any, PT interface {
	*T
	softdelete.Model
}] struct {
	repo   *softdelete.Repository[T, PT]
	entity string
	cache  SummaryCache
}

func NewReferenceService[T any, PT interface {
	*T
	softdelete.Model
}](repo *softdelete.Repository[T, PT], entity string, cache SummaryCache) *ReferenceService[T, PT] {
	return &ReferenceService[T, PT]{repo: repo, entity: entity, cache: cache}
}

func (s *ReferenceService[T, PT]) Create(ctx context.Context, row PT) (PT, error) {
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache)
	log.Info().Str("entity", s.entity).Msg("reference created")
	return row, nil
}

// List returns rows ordered by name. Every reference table has a name column.
func (s *ReferenceService[T, PT]) List(ctx context.Context, opts softdelete.Options) ([]T, error) {
	return s.repo.Find(ctx, opts, byName)
}

func byName(q *gorm.DB) *gorm.DB { return q.Order("name ASC") }

func (s *ReferenceService[T, PT]) Get(ctx context.Context, opts softdelete.Options, id uuid.UUID) (*T, error) {
	return s.repo.FindByID(ctx, opts, id)
}

// patchChecker is implemented by rows whose rules span several columns, so a
// partial patch has to be checked against the stored row.
type patchChecker interface {
	CheckPatch(fields map[string]interface{}) error
}

// Update patches a live row. An empty patch just returns the row.
func (s *ReferenceService[T, PT]) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*T, error) {
	if len(fields) == 0 {
		return s.repo.FindByID(ctx, softdelete.Default, id)
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, softdelete.Default, id)
		if err != nil {
			return err
		}
		if pc, ok := any(PT(current)).(patchChecker); ok {
			if err := pc.CheckPatch(fields); err != nil {
				return err
			}
		}
		return repo.Updates(ctx, id, fields)
	})
	if txErr != nil {
		return nil, txErr
	}
	invalidate(ctx, s.cache)
	return s.repo.FindByID(ctx, softdelete.Default, id)
}

func (s *ReferenceService[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, softdelete.Default, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache)
	log.Info().Str("entity", s.entity).Str("id", id.String()).Msg("reference deleted")
	return nil
}

func (s *ReferenceService[T, PT]) Restore(ctx context.Context, id uuid.UUID) (*T, error) {
	row, err := s.repo.Restore(ctx, id)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache)
	log.Info().Str("entity", s.entity).Str("id", id.String()).Msg("reference restored")
	return row, nil
}
