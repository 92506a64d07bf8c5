package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tennotools/platwatch-backend/pkg/db"
	pkgerrors "github.com/tennotools/platwatch-backend/pkg/errors"
)

// Scope narrows a query to the rows an operation should touch. Scopes compose
// the way GORM scopes do; a nil Scope matches every row.
type Scope func(*gorm.DB) *gorm.DB

// Fields carries partial column updates keyed by column name.
type Fields map[string]any

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(conn *gorm.DB) Base {
	return Base{db: conn}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Store adds typed create/read/update/delete operations on top of Base for a
// single entity shape. Domain repositories embed a Store and add their own
// joined queries on top.
type Store[T any] struct {
	Base
}

// NewStore constructs a Store for the entity type T.
func NewStore[T any](conn *gorm.DB) Store[T] {
	return Store[T]{Base: NewBase(conn)}
}

// WithTx rebinds the store to an open transaction so several operations can
// share one commit boundary. With a nil handle the store is returned as-is.
func (s Store[T]) WithTx(tx *gorm.DB) Store[T] {
	if tx == nil {
		return s
	}
	return Store[T]{Base: NewBase(tx)}
}

// Create persists one entity and returns it with server-assigned columns
// populated.
func (s Store[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if err := s.DB(ctx).Create(entity).Error; err != nil {
		return nil, classify(err, "create")
	}
	return entity, nil
}

// CreateAll inserts every entity as a single batch, preserving input order.
func (s Store[T]) CreateAll(ctx context.Context, entities []*T) ([]*T, error) {
	if len(entities) == 0 {
		return entities, nil
	}
	if err := s.DB(ctx).Create(entities).Error; err != nil {
		return nil, classify(err, "create batch")
	}
	return entities, nil
}

// Find returns the entities matched by scope in storage order, paginated when
// limit/offset are positive.
func (s Store[T]) Find(ctx context.Context, scope Scope, limit, offset int) ([]T, error) {
	query := s.scoped(ctx, scope)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []T
	if err := query.Find(&rows).Error; err != nil {
		return nil, classify(err, "find")
	}
	return rows, nil
}

// FindFirst returns the first match or (nil, nil) when nothing matches.
func (s Store[T]) FindFirst(ctx context.Context, scope Scope) (*T, error) {
	var row T
	err := s.scoped(ctx, scope).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err, "find first")
	}
	return &row, nil
}

// FindByID returns the entity with the given primary key or (nil, nil).
func (s Store[T]) FindByID(ctx context.Context, id any) (*T, error) {
	return s.FindFirst(ctx, ByID(id))
}

// Update applies partial column updates to every row matched by scope and
// returns the affected row count. Zero matches is a valid outcome.
func (s Store[T]) Update(ctx context.Context, scope Scope, fields Fields) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	var model T
	result := s.scoped(ctx, scope).Model(&model).Updates(map[string]any(fields))
	if result.Error != nil {
		return 0, classify(result.Error, "update")
	}
	return result.RowsAffected, nil
}

// UpdateByID applies partial column updates to one row; the count is 0 or 1.
func (s Store[T]) UpdateByID(ctx context.Context, id any, fields Fields) (int64, error) {
	return s.Update(ctx, ByID(id), fields)
}

// Delete removes the rows matched by scope. With logical set, rows are
// flagged via the del_flag column instead of being removed.
func (s Store[T]) Delete(ctx context.Context, scope Scope, logical bool) (int64, error) {
	if logical {
		return s.Update(ctx, scope, Fields{"del_flag": true})
	}
	var model T
	result := s.scoped(ctx, scope).Delete(&model)
	if result.Error != nil {
		return 0, classify(result.Error, "delete")
	}
	return result.RowsAffected, nil
}

// DeleteByID removes (or flags) one row by primary key.
func (s Store[T]) DeleteByID(ctx context.Context, id any, logical bool) (int64, error) {
	return s.Delete(ctx, ByID(id), logical)
}

func (s Store[T]) scoped(ctx context.Context, scope Scope) *gorm.DB {
	var model T
	query := s.DB(ctx).Model(&model)
	if scope != nil {
		query = scope(query)
	}
	return query
}

// ByID scopes a query to a single primary key.
func ByID(id any) Scope {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("id = ?", id)
	}
}

// IsConflict reports whether err was classified as a constraint violation.
// Sync paths use it to downgrade lost uniqueness races to "already exists".
func IsConflict(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeConflict)
}

// classify maps raw storage failures onto the service error taxonomy:
// constraint breaches become conflicts, everything else is internal.
func classify(err error, op string) error {
	switch {
	case db.IsUniqueViolation(err), db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, op+" violated a constraint")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op+" failed")
	}
}
