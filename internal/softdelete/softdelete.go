// Package softdelete makes logical deletion explicit for every entity that
// declares a deletion timestamp.
//
// An entity opts in by embedding Marker. All reads and deletes for such
// entities go through Repository, which takes the caller's override signals as a
// separate Options value. Options never become part of a query predicate.
package softdelete

import (
	"context"

	"stockhub/internal/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options carries per-call overrides of the default soft-delete policy.
type Options struct {
	// IncludeDeleted makes reads also match logically deleted rows.
	IncludeDeleted bool
	// Permanent turns a delete into a physical delete.
	Permanent bool
}

// Default applies the policy with no overrides.
var Default = Options{}

// Marker is embedded by models that support logical deletion.
type Marker struct {
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// IsDeleted reports whether the row carries a deletion timestamp.
func (m Marker) IsDeleted() bool { return m.DeletedAt.Valid }

func (Marker) softDeletable() {}

// Model is satisfied only by types embedding Marker.
type Model interface {
	IsDeleted() bool
	softDeletable()
}

// Scope is a reusable query refinement.
type Scope = func(*gorm.DB) *gorm.DB

// Repository is the soft-delete aware gateway for one entity family.
type Repository[T any, PT interface {
	*T
	Model
}] struct {
	db     *gorm.DB
	entity string
}

// New builds a repository for T. entity names the family in error messages.
func New[T any, PT interface {
	*T
	Model
}](db *gorm.DB, entity string) *Repository[T, PT] {
	return &Repository[T, PT]{db: db, entity: entity}
}

// WithTx returns a copy of the repository bound to tx.
func (r *Repository[T, PT]) WithTx(tx *gorm.DB) *Repository[T, PT] {
	return &Repository[T, PT]{db: tx, entity: r.entity}
}

// DB exposes the underlying handle so callers can open transactions.
func (r *Repository[T, PT]) DB() *gorm.DB { return r.db }

func (r *Repository[T, PT]) read(ctx context.Context, opts Options, scopes []Scope) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(T))
	if opts.IncludeDeleted {
		q = q.Unscoped()
	}
	if len(scopes) > 0 {
		q = q.Scopes(scopes...)
	}
	return q
}

// First returns the first row matching scopes.
func (r *Repository[T, PT]) First(ctx context.Context, opts Options, scopes ...Scope) (*T, error) {
	var row T
	if err := r.read(ctx, opts, scopes).First(&row).Error; err != nil {
		return nil, apperror.FromDB(err, r.entity)
	}
	return &row, nil
}

// FindByID looks a row up by primary key. With IncludeDeleted it also matches
// deleted rows, which is what restore flows rely on.
func (r *Repository[T, PT]) FindByID(ctx context.Context, opts Options, id uuid.UUID, scopes ...Scope) (*T, error) {
	return r.First(ctx, opts, append([]Scope{ByID(id)}, scopes...)...)
}

// Find lists rows matching scopes.
func (r *Repository[T, PT]) Find(ctx context.Context, opts Options, scopes ...Scope) ([]T, error) {
	var rows []T
	if err := r.read(ctx, opts, scopes).Find(&rows).Error; err != nil {
		return nil, apperror.FromDB(err, r.entity)
	}
	return rows, nil
}

// Count counts rows matching scopes.
func (r *Repository[T, PT]) Count(ctx context.Context, opts Options, scopes ...Scope) (int64, error) {
	var n int64
	if err := r.read(ctx, opts, scopes).Count(&n).Error; err != nil {
		return 0, apperror.FromDB(err, r.entity)
	}
	return n, nil
}

// Create inserts row.
func (r *Repository[T, PT]) Create(ctx context.Context, row PT) error {
	return apperror.FromDB(r.db.WithContext(ctx).Create(row).Error, r.entity)
}

// Updates patches the given columns on a live row.
func (r *Repository[T, PT]) Updates(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(new(T)).Scopes(ByID(id)).Updates(fields)
	if res.Error != nil {
		return apperror.FromDB(res.Error, r.entity)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("%s not found", r.entity)
	}
	return nil
}

// Delete marks the row deleted, or removes it when opts.Permanent is set.
// Soft-deleting an already deleted row reports NotFound.
func (r *Repository[T, PT]) Delete(ctx context.Context, opts Options, id uuid.UUID) error {
	n, err := r.DeleteWhere(ctx, opts, ByID(id))
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("%s not found", r.entity)
	}
	return nil
}

// DeleteWhere applies Delete to every row matching scopes and returns how many
// rows were affected. At least one scope is required.
func (r *Repository[T, PT]) DeleteWhere(ctx context.Context, opts Options, scopes ...Scope) (int64, error) {
	if len(scopes) == 0 {
		return 0, gorm.ErrMissingWhereClause
	}
	q := r.db.WithContext(ctx).Scopes(scopes...)
	if opts.Permanent {
		q = q.Unscoped()
	}
	res := q.Delete(new(T))
	if res.Error != nil {
		return 0, apperror.FromDB(res.Error, r.entity)
	}
	return res.RowsAffected, nil
}

// Restore clears the deletion timestamp. Restoring a live row is rejected so
// that a no-op restore is never silently accepted.
func (r *Repository[T, PT]) Restore(ctx context.Context, id uuid.UUID) (*T, error) {
	row, err := r.FindByID(ctx, Options{IncludeDeleted: true}, id)
	if err != nil {
		return nil, err
	}
	if !PT(row).IsDeleted() {
		return nil, apperror.Invariant("%s is not deleted", r.entity)
	}
	err = r.db.WithContext(ctx).Unscoped().Model(new(T)).
		Scopes(ByID(id)).
		Update("deleted_at", nil).Error
	if err != nil {
		return nil, apperror.FromDB(err, r.entity)
	}
	return r.FindByID(ctx, Default, id)
}

// ByID restricts a query to the row with the given primary key.
func ByID(id uuid.UUID) Scope {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: id})
	}
}
