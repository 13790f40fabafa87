// internal/domain/order/events.go
package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// EventType names an order lifecycle event
type EventType string

const (
	EventOrderPlaced        EventType = "order.placed"
	EventOrderConfirmed     EventType = "order.confirmed"
	EventOrderStatusChanged EventType = "order.status_changed"
)

// Event is the payload published for order lifecycle changes
type Event struct {
	Type           EventType       `json:"type"`
	OrderID        uint            `json:"orderId"`
	OrderNumber    string          `json:"orderNumber"`
	UserID         uint            `json:"userId"`
	Status         OrderStatus     `json:"status"`
	PreviousStatus OrderStatus     `json:"previousStatus,omitempty"`
	PaymentMethod  PaymentProvider `json:"paymentMethod"`
	Total          decimal.Decimal `json:"total"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

// NewEvent builds an event describing o
func NewEvent(eventType EventType, o *Order, previous OrderStatus, now time.Time) Event {
	return Event{
		Type:           eventType,
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: previous,
		PaymentMethod:  o.Payment.Provider,
		Total:          o.Total,
		OccurredAt:     now,
	}
}

// EventPublisher delivers order events to interested parties
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// FanOut publishes every event to all publishers and joins their errors
type FanOut []EventPublisher

// Publish implements EventPublisher
func (f FanOut) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
