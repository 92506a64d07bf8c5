package alerts

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/tennotools/platwatch-backend/pkg/errors"
)

// OrderChecker is the slice of the order store the alerts service needs to
// validate the association target.
type OrderChecker interface {
	Exists(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// Service manages which users get pinged for a watch order.
type Service interface {
	Subscribe(ctx context.Context, orderID uuid.UUID, subscriberID int64) error
	Unsubscribe(ctx context.Context, orderID uuid.UUID, subscriberID int64) error
	ListSubscribers(ctx context.Context, orderID uuid.UUID) ([]int64, error)
}

type service struct {
	repo   Repository
	orders OrderChecker
}

// NewService wires alerts dependencies.
func NewService(repo Repository, orders OrderChecker) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alerts repository required")
	}
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order checker required")
	}
	return &service{repo: repo, orders: orders}, nil
}

func (s *service) Subscribe(ctx context.Context, orderID uuid.UUID, subscriberID int64) error {
	if err := s.validatePair(ctx, orderID, subscriberID); err != nil {
		return err
	}
	if err := s.repo.Subscribe(ctx, orderID, subscriberID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "subscribe to order")
	}
	return nil
}

// Unsubscribe removes the pair. Removing an absent pair succeeds, mirroring
// the idempotent subscribe side.
func (s *service) Unsubscribe(ctx context.Context, orderID uuid.UUID, subscriberID int64) error {
	if err := s.validatePair(ctx, orderID, subscriberID); err != nil {
		return err
	}
	if _, err := s.repo.Unsubscribe(ctx, orderID, subscriberID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unsubscribe from order")
	}
	return nil
}

func (s *service) ListSubscribers(ctx context.Context, orderID uuid.UUID) ([]int64, error) {
	if err := s.requireOrder(ctx, orderID); err != nil {
		return nil, err
	}
	ids, err := s.repo.ListSubscriberIDs(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list order subscribers")
	}
	return ids, nil
}

func (s *service) validatePair(ctx context.Context, orderID uuid.UUID, subscriberID int64) error {
	if subscriberID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscriber id must be positive")
	}
	return s.requireOrder(ctx, orderID)
}

func (s *service) requireOrder(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	exists, err := s.orders.Exists(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check order")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "watch order not found")
	}
	return nil
}
