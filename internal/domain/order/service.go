// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/pagination"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	exportLimit     = 5000
)

// Service handles order history and back-office status changes
type Service struct {
	repo      Repository
	publisher EventPublisher
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewService creates a new order service
func NewService(repo Repository, publisher EventPublisher, log logrus.FieldLogger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListRequest represents order list query parameters
type ListRequest struct {
	pagination.Params
}

// ListResponse is a page of orders
type ListResponse struct {
	Orders []Order         `json:"orders"`
	Meta   pagination.Meta `json:"meta"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status  OrderStatus `json:"status" binding:"required,oneof=placed confirmed preparing out_for_delivery delivered cancelled"`
	Comment string      `json:"comment" binding:"max=500"`
}

// ListOrders returns the user's orders, newest first
func (s *Service) ListOrders(ctx context.Context, userID uint, req *ListRequest) (*ListResponse, error) {
	params := req.Params.Normalize(defaultPageSize, maxPageSize)

	orders, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	if orders == nil {
		orders = []Order{}
	}

	return &ListResponse{
		Orders: orders,
		Meta:   pagination.NewMeta(params, total),
	}, nil
}

// GetOrder returns one of the user's orders
func (s *Service) GetOrder(ctx context.Context, userID, orderID uint) (*Order, error) {
	return s.repo.FindByIDForUser(ctx, userID, orderID)
}

// UpdateStatus moves an order along its lifecycle
func (s *Service) UpdateStatus(ctx context.Context, adminID, orderID uint, req *UpdateStatusRequest) (*Order, error) {
	if !req.Status.Valid() {
		return nil, apperror.Validation("invalid status", map[string]string{"status": "unknown status"})
	}

	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := o.Status
	if previous.IsTerminal() {
		return nil, apperror.Validation(
			fmt.Sprintf("order is already %s", previous),
			map[string]string{"status": "order is closed"},
		)
	}
	if !CanTransition(previous, req.Status) {
		return nil, apperror.Validation(
			fmt.Sprintf("invalid status transition from %s to %s", previous, req.Status),
			map[string]string{"status": fmt.Sprintf("cannot move from %s", previous)},
		)
	}

	now := s.now()
	history := o.SetStatus(req.Status, req.Comment, adminID, now)
	if err := s.repo.Update(ctx, o, &history); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"from":     previous,
		"to":       o.Status,
		"admin_id": adminID,
	}).Info("order status changed")

	s.Publish(ctx, NewEvent(EventOrderStatusChanged, o, previous, now))

	return o, nil
}

// ListForExport returns orders for the back-office spreadsheet, newest first
func (s *Service) ListForExport(ctx context.Context, status OrderStatus) ([]Order, error) {
	if status != "" && !status.Valid() {
		return nil, apperror.Validation("invalid status", map[string]string{"status": "unknown status"})
	}

	orders, _, err := s.repo.List(ctx, ListFilter{
		Status: status,
		Params: pagination.Params{Page: 1, Limit: exportLimit},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

// Publish sends an event; failures are logged and never returned
func (s *Service) Publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":    event.Type,
			"order_id": event.OrderID,
		}).Warn("failed to publish order event")
	}
}
