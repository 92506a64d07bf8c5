package tracking

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tennotools/platwatch-backend/internal/repo"
	"github.com/tennotools/platwatch-backend/pkg/db/models"
)

// Repository persists watch orders and owns the join-row cleanup that keeps
// order_alerts free of dangling references.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.WatchOrder) (*models.WatchOrder, error)
	FirstByUser(ctx context.Context, userID int64) (*models.WatchOrder, error)
	ListByUser(ctx context.Context, userID int64) ([]models.WatchOrder, error)
	List(ctx context.Context, limit, offset int) ([]models.WatchOrder, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.WatchOrder, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteByUserIDs(ctx context.Context, userIDs []int64) (int64, error)
}

type repositoryImpl struct {
	store repo.Store[models.WatchOrder]
}

// NewRepository returns a tracking repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repositoryImpl{store: repo.NewStore[models.WatchOrder](conn)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{store: r.store.WithTx(tx)}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.WatchOrder) (*models.WatchOrder, error) {
	return r.store.Create(ctx, order)
}

func byUser(userID int64) repo.Scope {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	}
}

func (r *repositoryImpl) FirstByUser(ctx context.Context, userID int64) (*models.WatchOrder, error) {
	return r.store.FindFirst(ctx, byUser(userID))
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID int64) ([]models.WatchOrder, error) {
	return r.store.Find(ctx, byUser(userID), 0, 0)
}

func (r *repositoryImpl) List(ctx context.Context, limit, offset int) ([]models.WatchOrder, error) {
	return r.store.Find(ctx, nil, limit, offset)
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.WatchOrder, error) {
	return r.store.FindByID(ctx, id)
}

func (r *repositoryImpl) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	order, err := r.store.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return order != nil, nil
}

// DeleteByID removes one order together with its subscriber associations.
func (r *repositoryImpl) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	var removed int64
	err := r.store.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("order_id = ?", id).
			Delete(&models.OrderAlert{}).
			Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.WatchOrder{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// DeleteByUserIDs removes every order owned by the given users plus the join
// rows pointing at them, and returns the removed-order count.
func (r *repositoryImpl) DeleteByUserIDs(ctx context.Context, userIDs []int64) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	var removed int64
	err := r.store.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Exec(`DELETE FROM order_alerts WHERE order_id IN (SELECT id FROM watch_orders WHERE user_id IN ?)`, userIDs).
			Error; err != nil {
			return err
		}

		result := tx.Where("user_id IN ?", userIDs).Delete(&models.WatchOrder{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
