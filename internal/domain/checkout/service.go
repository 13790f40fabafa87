// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/domain/cart"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
	"github.com/veggiefresh/grocery-backend/internal/domain/payment"
	"github.com/veggiefresh/grocery-backend/internal/domain/pricing"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
)

var (
	ErrEmptyCart         = apperror.New(apperror.KindEmptyCart, "Cart is empty")
	ErrInvalidSignature  = apperror.New(apperror.KindInvalidSignature, "Invalid payment signature")
	ErrAddressRequired   = apperror.Validation("Delivery address is required", map[string]string{"address": "addressId or address is required"})
	ErrInvalidTimeSlot   = apperror.Validation("Invalid time slot", map[string]string{"timeSlot": "startTime must be before endTime"})
	ErrAlreadyPaid       = apperror.Conflict("Order is already paid")
	ErrPaymentNotPending = apperror.Conflict("Order is not awaiting online payment")
)

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodCOD      PaymentMethod = "cod"
)

// Service handles checkout business logic
type Service struct {
	carts     cart.Repository
	orders    order.Repository
	tx        TransactionManager
	addresses AddressBook
	gateway   payment.Gateway
	publisher order.EventPublisher
	fees      pricing.FeePolicy
	currency  string
	location  *time.Location
	now       func() time.Time
	log       logrus.FieldLogger
}

// NewService creates a new checkout service
func NewService(
	carts cart.Repository,
	orders order.Repository,
	tx TransactionManager,
	addresses AddressBook,
	gateway payment.Gateway,
	publisher order.EventPublisher,
	cfg *config.Config,
	log logrus.FieldLogger,
) *Service {
	currency := cfg.Checkout.Currency
	if currency == "" {
		currency = "INR"
	}

	return &Service{
		carts:     carts,
		orders:    orders,
		tx:        tx,
		addresses: addresses,
		gateway:   gateway,
		publisher: publisher,
		fees: pricing.FeePolicy{
			FlatFee:       cfg.Checkout.DeliveryFee,
			FreeThreshold: cfg.Checkout.FreeDeliveryThreshold,
		},
		currency: currency,
		location: cfg.Location(),
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// AddressInput is a delivery address typed in at checkout
type AddressInput struct {
	Name    string `json:"name"`
	Line1   string `json:"line1" binding:"required"`
	Line2   string `json:"line2"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required,min=6"`
	Phone   string `json:"phone" binding:"required,min=10"`
}

// CreateOrderRequest represents the checkout request
type CreateOrderRequest struct {
	AddressID     *uint          `json:"addressId"`
	Address       *AddressInput  `json:"address"`
	PaymentMethod PaymentMethod  `json:"paymentMethod" binding:"required,oneof=razorpay cod"`
	TimeSlot      order.TimeSlot `json:"timeSlot" binding:"required"`
}

// CreateOrderResponse is returned after an order is placed. The gateway fields are
// set only for online payment.
type CreateOrderResponse struct {
	Order           *order.Order `json:"order"`
	OrderID         uint         `json:"orderId"`
	RazorpayOrderID string       `json:"razorpayOrderId,omitempty"`
	Amount          int64        `json:"amount"`
	Currency        string       `json:"currency"`
	KeyID           string       `json:"keyId,omitempty"`
}

// VerifyPaymentRequest is the gateway callback forwarded by the storefront
type VerifyPaymentRequest struct {
	RazorpayOrderID string `json:"razorpayOrderId" binding:"required"`
	PaymentID       string `json:"paymentId" binding:"required"`
	Signature       string `json:"signature" binding:"required"`
	OrderID         uint   `json:"orderId" binding:"required"`
}

// PaymentMethodOption describes an available payment method
type PaymentMethodOption struct {
	ID          PaymentMethod `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
}

// CreateOrder converts the user's cart into an order.
//
// Cash on delivery is confirmed immediately and the cart is cleared in the same
// transaction as the order insert. Online payment leaves the order placed and the
// cart intact until the gateway callback is verified.
func (s *Service) CreateOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	c, err := s.carts.FindByUserID(ctx, userID)
	if errors.Is(err, cart.ErrCartNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if req.TimeSlot.StartTime >= req.TimeSlot.EndTime {
		return nil, ErrInvalidTimeSlot
	}

	address, err := s.resolveAddress(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	// Totals are taken from the line prices, never from the stored subtotal
	c.Recalculate()
	fee := s.fees.DeliveryFee(c.Subtotal)
	now := s.now()

	o := &order.Order{
		OrderNumber: order.GenerateOrderNumber(now),
		UserID:      userID,
		Subtotal:    c.Subtotal,
		DeliveryFee: fee,
		Total:       c.Subtotal.Add(fee),
		Currency:    s.currency,
		Address:     address,
		TimeSlot:    req.TimeSlot,
		Items:       order.ItemsFromCart(c.Snapshot()),
	}

	switch req.PaymentMethod {
	case PaymentMethodCOD:
		return s.placeCashOnDelivery(ctx, c, o, now)
	case PaymentMethodRazorpay:
		return s.placeOnline(ctx, o, now)
	default:
		return nil, apperror.Validation("Invalid payment method", map[string]string{"paymentMethod": "must be razorpay or cod"})
	}
}

func (s *Service) placeCashOnDelivery(ctx context.Context, c *cart.Cart, o *order.Order, now time.Time) (*CreateOrderResponse, error) {
	o.Payment = order.Payment{
		Provider: order.PaymentProviderCOD,
		Status:   order.PaymentStatusPending,
		OrderID:  "cod_" + uuid.NewString(),
	}
	o.SetStatus(order.OrderStatusConfirmed, "Cash on delivery order confirmed", 0, now)

	err := s.tx.WithinTx(ctx, func(r TxRepos) error {
		if err := r.Orders().Create(ctx, o); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		c.Clear()
		if err := r.Carts().Save(ctx, c); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.OrderNumber,
		"user_id":      o.UserID,
		"total":        o.Total.StringFixed(2),
	}).Info("cash on delivery order placed")

	s.publish(ctx, order.NewEvent(order.EventOrderPlaced, o, "", now))

	return &CreateOrderResponse{
		Order:    o,
		OrderID:  o.ID,
		Amount:   o.AmountInMinorUnits(),
		Currency: o.Currency,
	}, nil
}

func (s *Service) placeOnline(ctx context.Context, o *order.Order, now time.Time) (*CreateOrderResponse, error) {
	gwOrder, err := s.gateway.CreateOrder(ctx, &payment.CreateOrderRequest{
		Amount:   o.AmountInMinorUnits(),
		Currency: o.Currency,
		Receipt:  "rcpt_" + o.OrderNumber,
		Notes: map[string]string{
			"userId":      strconv.FormatUint(uint64(o.UserID), 10),
			"orderNumber": o.OrderNumber,
		},
	})
	if err != nil {
		return nil, err
	}

	o.Payment = order.Payment{
		Provider: order.PaymentProviderRazorpay,
		Status:   order.PaymentStatusCreated,
		OrderID:  gwOrder.ID,
	}
	o.SetStatus(order.OrderStatusPlaced, "Awaiting payment", 0, now)

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"order_id":         o.ID,
		"order_number":     o.OrderNumber,
		"user_id":          o.UserID,
		"gateway_order_id": gwOrder.ID,
	}).Info("online order placed, awaiting payment")

	s.publish(ctx, order.NewEvent(order.EventOrderPlaced, o, "", now))

	resp := &CreateOrderResponse{
		Order:           o,
		OrderID:         o.ID,
		RazorpayOrderID: gwOrder.ID,
		Amount:          o.AmountInMinorUnits(),
		Currency:        o.Currency,
	}
	if s.gateway.Configured() {
		resp.KeyID = s.gateway.KeyID()
	}
	return resp, nil
}

// VerifyPayment checks a gateway callback and marks the order paid.
// A bad signature changes nothing.
func (s *Service) VerifyPayment(ctx context.Context, userID uint, req *VerifyPaymentRequest) (*order.Order, error) {
	if !s.gateway.VerifySignature(req.RazorpayOrderID, req.PaymentID, req.Signature) {
		s.log.WithFields(logrus.Fields{
			"user_id":          userID,
			"order_id":         req.OrderID,
			"gateway_order_id": req.RazorpayOrderID,
		}).Warn("payment signature mismatch")
		return nil, ErrInvalidSignature
	}

	now := s.now()
	var (
		o        *order.Order
		previous order.OrderStatus
		changed  bool
	)

	err := s.tx.WithinTx(ctx, func(r TxRepos) error {
		var err error
		o, err = r.Orders().FindByIDForUser(ctx, userID, req.OrderID)
		if err != nil {
			return err
		}

		// The signature only proves the pair; the pair must belong to this order
		if o.Payment.OrderID != req.RazorpayOrderID {
			return ErrInvalidSignature
		}
		if o.Payment.Provider != order.PaymentProviderRazorpay {
			return ErrPaymentNotPending
		}
		if o.IsPaid() {
			if o.Payment.PaymentID == req.PaymentID {
				return nil
			}
			return ErrAlreadyPaid
		}

		previous = o.Status
		o.Payment.Status = order.PaymentStatusPaid
		o.Payment.PaymentID = req.PaymentID
		o.Payment.Signature = req.Signature
		o.Payment.PaidAt = &now

		var history *order.OrderStatusHistory
		if order.CanTransition(o.Status, order.OrderStatusConfirmed) {
			h := o.SetStatus(order.OrderStatusConfirmed, "Payment received", 0, now)
			history = &h
		}
		if err := r.Orders().Update(ctx, o, history); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		changed = true

		c, err := r.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, cart.ErrCartNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve cart: %w", err)
		}
		c.Clear()
		if err := r.Carts().Save(ctx, c); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.WithFields(logrus.Fields{
			"order_id":   o.ID,
			"payment_id": req.PaymentID,
			"status":     o.Status,
		}).Info("payment verified")

		s.publish(ctx, order.NewEvent(order.EventOrderConfirmed, o, previous, now))
	}

	return o, nil
}

// GetTimeSlots returns the delivery windows offered right now, dated in the
// storefront's time zone
func (s *Service) GetTimeSlots() []TimeSlotOption {
	return GenerateTimeSlots(s.now().In(s.location))
}

// GetPaymentMethods returns the payment methods offered at checkout
func (s *Service) GetPaymentMethods() []PaymentMethodOption {
	return []PaymentMethodOption{
		{
			ID:          PaymentMethodRazorpay,
			Name:        "Pay Online",
			Description: "UPI, cards, net banking and wallets",
			Available:   true,
		},
		{
			ID:          PaymentMethodCOD,
			Name:        "Cash on Delivery",
			Description: "Pay when your order arrives",
			Available:   true,
		},
	}
}

// SaveAddress normalizes an address typed in at checkout. It is not persisted;
// saved addresses are managed from the profile.
func (s *Service) SaveAddress(req *AddressInput) *AddressInput {
	return &AddressInput{
		Name:    strings.TrimSpace(req.Name),
		Line1:   strings.TrimSpace(req.Line1),
		Line2:   strings.TrimSpace(req.Line2),
		City:    strings.TrimSpace(req.City),
		State:   strings.TrimSpace(req.State),
		Pincode: strings.TrimSpace(req.Pincode),
		Phone:   strings.TrimSpace(req.Phone),
	}
}

func (s *Service) resolveAddress(ctx context.Context, userID uint, req *CreateOrderRequest) (order.Address, error) {
	if req.AddressID != nil {
		saved, err := s.addresses.GetAddress(ctx, userID, *req.AddressID)
		if err != nil {
			return order.Address{}, err
		}
		return order.Address{
			Name:    saved.Name,
			Line1:   saved.Line1,
			Line2:   saved.Line2,
			City:    saved.City,
			State:   saved.State,
			Pincode: saved.Pincode,
			Phone:   saved.Phone,
		}, nil
	}

	if req.Address == nil {
		return order.Address{}, ErrAddressRequired
	}

	in := s.SaveAddress(req.Address)
	return order.Address{
		Name:    in.Name,
		Line1:   in.Line1,
		Line2:   in.Line2,
		City:    in.City,
		State:   in.State,
		Pincode: in.Pincode,
		Phone:   in.Phone,
	}, nil
}

func (s *Service) publish(ctx context.Context, event order.Event) {
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
