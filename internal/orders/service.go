package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/pkg/db"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
	apperrors "github.com/minhlong-dev/industro-backend/pkg/errors"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
	"github.com/minhlong-dev/industro-backend/pkg/pagination"
)

// Service serves order history and the back-office status workflow.
type Service struct {
	repo *Repo
	logg *logger.Logger
}

func NewService(repo *Repo, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders service requires a repo")
	}
	if logg == nil {
		return nil, fmt.Errorf("orders service requires a logger")
	}
	return &Service{repo: repo, logg: logg}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*View, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading order")
	}
	return toView(order), nil
}

// GetOwnOrder returns an order only when it belongs to the caller.
func (s *Service) GetOwnOrder(ctx context.Context, userID, orderID uuid.UUID) (*View, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading order")
	}
	if order.UserID == nil || *order.UserID != userID {
		// Hide existence from other customers.
		return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
	}
	return toView(order), nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]View, pagination.Meta, error) {
	list, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Wrap(apperrors.CodeInternal, err, "listing orders")
	}

	views := make([]View, 0, len(list))
	for i := range list {
		views = append(views, *toView(&list[i]))
	}
	return views, pagination.NewMeta(page, total), nil
}

// ListOwnOrders is the customer-facing history listing.
func (s *Service) ListOwnOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]View, pagination.Meta, error) {
	return s.List(ctx, ListFilter{UserID: &userID}, page)
}

// UpdateStatus applies one lifecycle transition. Invalid jumps and
// terminal states are rejected.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*View, error) {
	next, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "unknown order status")
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading order")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, apperrors.New(apperrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	moved, err := s.repo.UpdateStatus(ctx, id, order.Status, next)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating order status")
	}
	if !moved {
		return nil, apperrors.New(apperrors.CodeStateConflict, "order status changed concurrently")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_code": order.Code,
		"from":       order.Status.String(),
		"to":         next.String(),
	})
	s.logg.Info(ctx, "order status updated")

	order.Status = next
	return toView(order), nil
}
