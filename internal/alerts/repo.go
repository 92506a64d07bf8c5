package alerts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tennotools/platwatch-backend/internal/repo"
	"github.com/tennotools/platwatch-backend/pkg/db/models"
)

// Repository persists the order/subscriber association.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Subscribe(ctx context.Context, orderID uuid.UUID, subscriberID int64) error
	Unsubscribe(ctx context.Context, orderID uuid.UUID, subscriberID int64) (int64, error)
	ListSubscriberIDs(ctx context.Context, orderID uuid.UUID) ([]int64, error)
}

type repositoryImpl struct {
	base repo.Base
}

// NewRepository returns an alerts repository bound to the provided database.
func NewRepository(conn *gorm.DB) Repository {
	return &repositoryImpl{base: repo.NewBase(conn)}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{base: repo.NewBase(tx)}
}

// Subscribe registers the pair, creating the subscriber row on first contact.
// Re-inserting an existing pair is a no-op.
func (r *repositoryImpl) Subscribe(ctx context.Context, orderID uuid.UUID, subscriberID int64) error {
	return r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Exec(`INSERT INTO alert_subscribers (id) VALUES (?) ON CONFLICT (id) DO NOTHING`, subscriberID).
			Error; err != nil {
			return err
		}
		return tx.
			Exec(`INSERT INTO order_alerts (order_id, subscriber_id) VALUES (?, ?) ON CONFLICT (order_id, subscriber_id) DO NOTHING`, orderID, subscriberID).
			Error
	})
}

// Unsubscribe removes the pair if it exists and returns the removed count.
func (r *repositoryImpl) Unsubscribe(ctx context.Context, orderID uuid.UUID, subscriberID int64) (int64, error) {
	result := r.base.DB(ctx).
		Where("order_id = ? AND subscriber_id = ?", orderID, subscriberID).
		Delete(&models.OrderAlert{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) ListSubscriberIDs(ctx context.Context, orderID uuid.UUID) ([]int64, error) {
	ids := []int64{}
	err := r.base.DB(ctx).
		Model(&models.OrderAlert{}).
		Where("order_id = ?", orderID).
		Order("subscriber_id ASC").
		Pluck("subscriber_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
