package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/logger"
	"github.com/veggiefresh/grocery-backend/internal/pkg/pagination"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint) (*Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*Order)
	return o, args.Error(1)
}

func (m *MockRepository) FindByIDForUser(ctx context.Context, userID, id uint) (*Order, error) {
	args := m.Called(ctx, userID, id)
	o, _ := args.Get(0).(*Order)
	return o, args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uint, params pagination.Params) ([]Order, int64, error) {
	args := m.Called(ctx, userID, params)
	orders, _ := args.Get(0).([]Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]Order, int64, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, o *Order, history *OrderStatusHistory) error {
	args := m.Called(ctx, o, history)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestCanTransition(t *testing.T) {
	chain := []OrderStatus{
		OrderStatusPlaced,
		OrderStatusConfirmed,
		OrderStatusPreparing,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
	}
	for i := 0; i < len(chain)-1; i++ {
		assert.True(t, CanTransition(chain[i], chain[i+1]), "%s -> %s", chain[i], chain[i+1])
		assert.False(t, CanTransition(chain[i+1], chain[i]), "%s -> %s", chain[i+1], chain[i])
	}

	for _, s := range chain[:len(chain)-1] {
		assert.True(t, CanTransition(s, OrderStatusCancelled), "%s -> cancelled", s)
	}

	assert.False(t, CanTransition(OrderStatusDelivered, OrderStatusCancelled))
	assert.False(t, CanTransition(OrderStatusCancelled, OrderStatusConfirmed))
	assert.False(t, CanTransition(OrderStatusPlaced, OrderStatusDelivered))
	assert.False(t, CanTransition(OrderStatusPlaced, OrderStatusPlaced))
}

func TestListOrdersDefaults(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, logger.Discard())
	ctx := context.Background()

	repo.On("ListByUser", ctx, uint(7), pagination.Params{Page: 1, Limit: 10}).
		Return(nil, int64(23), nil).Once()

	resp, err := svc.ListOrders(ctx, 7, &ListRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp.Orders)
	assert.Equal(t, pagination.Meta{Total: 23, Page: 1, Limit: 10, Pages: 3}, resp.Meta)
	repo.AssertExpectations(t)
}

func TestGetOrderScopedToUser(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, logger.Discard())
	ctx := context.Background()

	repo.On("FindByIDForUser", ctx, uint(2), uint(9)).Return(nil, ErrOrderNotFound)

	_, err := svc.GetOrder(ctx, 2, 9)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestUpdateStatus(t *testing.T) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	svc := NewService(repo, pub, logger.Discard())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	o := &Order{ID: 5, UserID: 2, OrderNumber: "ORD-1", Status: OrderStatusOutForDelivery, Total: decimal.NewFromInt(190)}
	repo.On("FindByID", ctx, uint(5)).Return(o, nil)
	repo.On("Update", ctx, o, mock.MatchedBy(func(h *OrderStatusHistory) bool {
		return h.Status == OrderStatusDelivered && h.CreatedBy == 1 && h.Comment == "handed over"
	})).Return(nil).Once()
	pub.On("Publish", ctx, mock.MatchedBy(func(e Event) bool {
		return e.Type == EventOrderStatusChanged &&
			e.Status == OrderStatusDelivered &&
			e.PreviousStatus == OrderStatusOutForDelivery
	})).Return(errors.New("broker down")).Once()

	got, err := svc.UpdateStatus(ctx, 1, 5, &UpdateStatusRequest{Status: OrderStatusDelivered, Comment: "handed over"})
	require.NoError(t, err, "publish failures must not fail the request")
	assert.Equal(t, OrderStatusDelivered, got.Status)
	require.NotNil(t, got.DeliveredAt)
	assert.Equal(t, now, *got.DeliveredAt)

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, logger.Discard())
	ctx := context.Background()

	repo.On("FindByID", ctx, uint(5)).Return(&Order{ID: 5, Status: OrderStatusDelivered}, nil)

	_, err := svc.UpdateStatus(ctx, 1, 5, &UpdateStatusRequest{Status: OrderStatusCancelled})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)

	_, err = svc.UpdateStatus(ctx, 1, 5, &UpdateStatusRequest{Status: "shipped"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestListForExport(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, logger.Discard())
	ctx := context.Background()

	repo.On("List", ctx, ListFilter{Status: OrderStatusConfirmed, Params: pagination.Params{Page: 1, Limit: exportLimit}}).
		Return([]Order{{ID: 1}}, int64(1), nil)

	orders, err := svc.ListForExport(ctx, OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = svc.ListForExport(ctx, "bogus")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestFanOutJoinsErrors(t *testing.T) {
	ok := new(MockPublisher)
	bad := new(MockPublisher)
	ok.On("Publish", mock.Anything, mock.Anything).Return(nil)
	bad.On("Publish", mock.Anything, mock.Anything).Return(errors.New("down"))

	err := FanOut{ok, bad}.Publish(context.Background(), Event{Type: EventOrderPlaced})
	assert.EqualError(t, err, "down")
	ok.AssertNumberOfCalls(t, "Publish", 1)
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	a := GenerateOrderNumber(now)
	b := GenerateOrderNumber(now)
	assert.Regexp(t, `^ORD-20240501-[0-9A-F]{8}$`, a)
	assert.NotEqual(t, a, b)
}
