package tracking

import (
	"context"

	"github.com/google/uuid"

	"github.com/tennotools/platwatch-backend/pkg/db/models"
	pkgerrors "github.com/tennotools/platwatch-backend/pkg/errors"
)

// ItemChecker is the slice of the catalog the tracking service needs to
// validate order targets.
type ItemChecker interface {
	Exists(ctx context.Context, itemID string) (bool, error)
}

// SubscriberSource supplies the notify list attached to orders on reads.
type SubscriberSource interface {
	ListSubscriberIDs(ctx context.Context, orderID uuid.UUID) ([]int64, error)
}

// Service defines watch-order operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Order, error)
	GetByUser(ctx context.Context, userID int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	List(ctx context.Context, limit, offset int) ([]Order, error)
	Delete(ctx context.Context, orderID uuid.UUID) error
	DeleteByUsers(ctx context.Context, userIDs []int64) (int64, error)
}

// CreateParams carries the fields of a new watch order.
type CreateParams struct {
	UserID            int64
	ItemID            string
	PlatinumThreshold int
	MinimumQuantity   int
	NotifyUsers       []int64
}

type service struct {
	repo        Repository
	items       ItemChecker
	subscribers SubscriberSource
}

// NewService wires tracking dependencies.
func NewService(repo Repository, items ItemChecker, subscribers SubscriberSource) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tracking repository required")
	}
	if items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "item checker required")
	}
	if subscribers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriber source required")
	}
	return &service{repo: repo, items: items, subscribers: subscribers}, nil
}

// Create validates and persists a new watch order. Requests carrying a notify
// list are rejected outright: fan-out notification is stored as data but the
// create path for it is not wired end to end yet.
func (s *service) Create(ctx context.Context, params CreateParams) (*Order, error) {
	if len(params.NotifyUsers) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification of multiple users is currently not supported")
	}
	if params.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be positive")
	}
	if params.PlatinumThreshold <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platinum threshold must be positive")
	}
	if params.MinimumQuantity == 0 {
		params.MinimumQuantity = 1
	}
	if params.MinimumQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum quantity must be positive")
	}

	exists, err := s.items.Exists(ctx, params.ItemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
	}

	order := &models.WatchOrder{
		ID:                uuid.New(),
		UserID:            params.UserID,
		ItemID:            params.ItemID,
		PlatinumThreshold: params.PlatinumThreshold,
		MinimumQuantity:   params.MinimumQuantity,
	}
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	dto := toOrder(*created, nil)
	return &dto, nil
}

// GetByUser returns the user's first order. Callers wanting every order use
// ListByUser instead.
func (s *service) GetByUser(ctx context.Context, userID int64) (*Order, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be positive")
	}
	order, err := s.repo.FirstByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no watch order for user")
	}
	return s.withSubscribers(ctx, *order)
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be positive")
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withSubscribersAll(ctx, orders)
}

func (s *service) List(ctx context.Context, limit, offset int) ([]Order, error) {
	if limit < 0 || offset < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "limit and offset must not be negative")
	}
	orders, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.withSubscribersAll(ctx, orders)
}

func (s *service) Delete(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	removed, err := s.repo.DeleteByID(ctx, orderID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "watch order not found")
	}
	return nil
}

func (s *service) DeleteByUsers(ctx context.Context, userIDs []int64) (int64, error) {
	if len(userIDs) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "at least one user id required")
	}
	for _, id := range userIDs {
		if id <= 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "user ids must be positive")
		}
	}
	return s.repo.DeleteByUserIDs(ctx, userIDs)
}

func (s *service) withSubscribers(ctx context.Context, order models.WatchOrder) (*Order, error) {
	notify, err := s.subscribers.ListSubscriberIDs(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order subscribers")
	}
	dto := toOrder(order, notify)
	return &dto, nil
}

func (s *service) withSubscribersAll(ctx context.Context, orders []models.WatchOrder) ([]Order, error) {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		dto, err := s.withSubscribers(ctx, order)
		if err != nil {
			return nil, err
		}
		result = append(result, *dto)
	}
	return result, nil
}
