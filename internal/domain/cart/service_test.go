package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veggiefresh/grocery-backend/internal/domain/pricing"
	"github.com/veggiefresh/grocery-backend/internal/domain/product"
	"github.com/veggiefresh/grocery-backend/internal/pkg/logger"
)

// memRepository keeps deep copies so a failed mutation never leaks into stored state
type memRepository struct {
	mu    sync.Mutex
	carts map[uint]Cart
	saves int
}

func newMemRepository() *memRepository {
	return &memRepository{carts: map[uint]Cart{}}
}

func (r *memRepository) FindByUserID(_ context.Context, userID uint) (*Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	c := stored
	c.Items = stored.Snapshot()
	return &c, nil
}

func (r *memRepository) Save(_ context.Context, c *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *c
	stored.Items = c.Snapshot()
	r.carts[c.UserID] = stored
	r.saves++
	return nil
}

type memCatalog map[uint]*product.Product

func (m memCatalog) FindActiveByID(_ context.Context, id uint) (*product.Product, error) {
	p, ok := m[id]
	if !ok || !p.IsActive {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

const (
	userID     uint = 7
	tomatoesID uint = 1
	spinachID  uint = 2
	retiredID  uint = 3
)

func newCatalog() memCatalog {
	return memCatalog{
		tomatoesID: {
			ID:       tomatoesID,
			Name:     "Tomatoes",
			IsActive: true,
			Images:   []product.ProductImage{{URL: "tomato.jpg"}},
			UnitPrices: []product.UnitPrice{
				{Unit: pricing.UnitKg, BaseQty: d("1"), Price: d("40"), Stock: d("50")},
				{Unit: pricing.UnitGram, BaseQty: d("1000"), Price: d("40"), Stock: d("50000")},
			},
		},
		spinachID: {
			ID:       spinachID,
			Name:     "Spinach",
			IsActive: true,
			UnitPrices: []product.UnitPrice{
				{Unit: pricing.UnitBundle, BaseQty: d("1"), Price: d("15"), Stock: d("3")},
			},
		},
		retiredID: {
			ID:       retiredID,
			Name:     "Old Stock",
			IsActive: false,
			UnitPrices: []product.UnitPrice{
				{Unit: pricing.UnitKg, BaseQty: d("1"), Price: d("10"), Stock: d("10")},
			},
		},
	}
}

func newTestService() (*Service, *memRepository, memCatalog) {
	repo := newMemRepository()
	catalog := newCatalog()
	return NewService(repo, catalog, logger.Discard()), repo, catalog
}

func add(t *testing.T, svc *Service, productID uint, unit pricing.Unit, qty string) *Cart {
	t.Helper()
	c, err := svc.AddItem(context.Background(), userID, &AddItemRequest{ProductID: productID, Unit: unit, Qty: d(qty)})
	require.NoError(t, err)
	return c
}

func assertSubtotalInvariant(t *testing.T, c *Cart) {
	t.Helper()
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(item.Price)
	}
	assert.True(t, c.Subtotal.Equal(sum), "subtotal %s != sum %s", c.Subtotal, sum)
}

func TestGetCartWithoutCartIsEmpty(t *testing.T) {
	svc, _, _ := newTestService()

	c, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.True(t, c.Subtotal.IsZero())
}

func TestAddItemMergeScenario(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	c := add(t, svc, tomatoesID, pricing.UnitKg, "2")
	require.Len(t, c.Items, 1)
	assert.Equal(t, "80.00", c.Items[0].Price.StringFixed(2))
	assert.Equal(t, "tomato.jpg", c.Items[0].Image)
	assert.True(t, c.Items[0].UnitPrice.Equal(d("40")))

	c = add(t, svc, tomatoesID, pricing.UnitKg, "3")
	require.Len(t, c.Items, 1)
	assert.True(t, c.Items[0].Qty.Equal(d("5")))
	assert.Equal(t, "200.00", c.Items[0].Price.StringFixed(2))
	assertSubtotalInvariant(t, c)

	_, err := svc.AddItem(ctx, userID, &AddItemRequest{ProductID: tomatoesID, Unit: pricing.UnitKg, Qty: d("46")})
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	stored, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].Qty.Equal(d("5")), "failed add must not change the cart")
	assert.True(t, stored.Subtotal.Equal(d("200")))
}

func TestAddItemMergePricesCombinedQuantity(t *testing.T) {
	svc, _, catalog := newTestService()
	catalog[spinachID].UnitPrices[0] = product.UnitPrice{Unit: pricing.UnitBundle, BaseQty: d("3"), Price: d("10"), Stock: d("10")}

	add(t, svc, spinachID, pricing.UnitBundle, "1")
	c := add(t, svc, spinachID, pricing.UnitBundle, "1")

	require.Len(t, c.Items, 1)
	assert.Equal(t, "6.67", c.Items[0].Price.StringFixed(2), "priced once for qty 2, not 3.33 + 3.33")
}

func TestAddItemSeparateUnitsAreSeparateLines(t *testing.T) {
	svc, _, _ := newTestService()

	add(t, svc, tomatoesID, pricing.UnitKg, "1")
	c := add(t, svc, tomatoesID, pricing.UnitGram, "500")

	require.Len(t, c.Items, 2)
	assert.Equal(t, "60.00", c.Subtotal.StringFixed(2))
}

func TestAddItemErrors(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  AddItemRequest
		want error
	}{
		{"missing product", AddItemRequest{ProductID: 99, Unit: pricing.UnitKg, Qty: d("1")}, product.ErrProductNotFound},
		{"inactive product", AddItemRequest{ProductID: retiredID, Unit: pricing.UnitKg, Qty: d("1")}, product.ErrProductNotFound},
		{"unit not offered", AddItemRequest{ProductID: tomatoesID, Unit: pricing.UnitPieces, Qty: d("1")}, pricing.ErrUnitNotOffered},
		{"over stock", AddItemRequest{ProductID: spinachID, Unit: pricing.UnitBundle, Qty: d("4")}, ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, userID, &tc.req)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	_, err := svc.AddItem(ctx, userID, &AddItemRequest{ProductID: tomatoesID, Unit: pricing.UnitKg, Qty: d("0")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qty")

	assert.Zero(t, repo.saves, "no cart is created by a failed add")
}

func TestUpdateItemTargetsFirstLineOfProduct(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	add(t, svc, tomatoesID, pricing.UnitKg, "1")
	add(t, svc, tomatoesID, pricing.UnitGram, "500")

	qty := d("3")
	c, err := svc.UpdateItem(ctx, userID, tomatoesID, &UpdateItemRequest{Qty: &qty})
	require.NoError(t, err)

	require.Len(t, c.Items, 2)
	assert.Equal(t, pricing.UnitKg, c.Items[0].Unit, "the earliest line is updated")
	assert.True(t, c.Items[0].Qty.Equal(d("3")))
	assert.True(t, c.Items[1].Qty.Equal(d("500")), "the gram line is untouched")
	assertSubtotalInvariant(t, c)
}

func TestUpdateItemWithTargetUnit(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	add(t, svc, tomatoesID, pricing.UnitKg, "1")
	add(t, svc, tomatoesID, pricing.UnitGram, "500")

	qty := d("250")
	c, err := svc.UpdateItem(ctx, userID, tomatoesID, &UpdateItemRequest{Qty: &qty, TargetUnit: pricing.UnitGram})
	require.NoError(t, err)

	assert.True(t, c.Items[0].Qty.Equal(d("1")))
	assert.True(t, c.Items[1].Qty.Equal(d("250")))
	assert.Equal(t, "10.00", c.Items[1].Price.StringFixed(2))
	assertSubtotalInvariant(t, c)
}

func TestUpdateItemChangesUnitAndReprices(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	add(t, svc, tomatoesID, pricing.UnitKg, "2")

	unit := pricing.UnitGram
	qty := d("750")
	c, err := svc.UpdateItem(ctx, userID, tomatoesID, &UpdateItemRequest{Unit: &unit, Qty: &qty})
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, pricing.UnitGram, c.Items[0].Unit)
	assert.Equal(t, "30.00", c.Items[0].Price.StringFixed(2))
	assert.Equal(t, "30.00", c.Subtotal.StringFixed(2))
}

func TestUpdateItemUnitChangeMergesWithExistingLine(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	add(t, svc, tomatoesID, pricing.UnitGram, "500")
	add(t, svc, tomatoesID, pricing.UnitKg, "1")

	unit := pricing.UnitKg
	qty := d("2")
	c, err := svc.UpdateItem(ctx, userID, tomatoesID, &UpdateItemRequest{Unit: &unit, Qty: &qty, TargetUnit: pricing.UnitGram})
	require.NoError(t, err)

	require.Len(t, c.Items, 1, "one line per (product, unit)")
	assert.Equal(t, pricing.UnitKg, c.Items[0].Unit)
	assert.True(t, c.Items[0].Qty.Equal(d("3")))
	assert.Equal(t, "120.00", c.Subtotal.StringFixed(2))
}

func TestUpdateItemUsesCurrentCatalog(t *testing.T) {
	svc, _, catalog := newTestService()
	ctx := context.Background()

	add(t, svc, spinachID, pricing.UnitBundle, "1")
	catalog[spinachID].UnitPrices[0].Price = d("20")
	catalog[spinachID].UnitPrices[0].Stock = d("1")

	qty := d("2")
	_, err := svc.UpdateItem(ctx, userID, spinachID, &UpdateItemRequest{Qty: &qty})
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	qty = d("1")
	c, err := svc.UpdateItem(ctx, userID, spinachID, &UpdateItemRequest{Qty: &qty})
	require.NoError(t, err)
	assert.Equal(t, "20.00", c.Items[0].Price.StringFixed(2))
	assert.True(t, c.Items[0].UnitPrice.Equal(d("15")), "snapshot kept when the unit is unchanged")
}

func TestUpdateItemErrors(t *testing.T) {
	svc, _, catalog := newTestService()
	ctx := context.Background()
	qty := d("1")

	_, err := svc.UpdateItem(ctx, userID, tomatoesID, &UpdateItemRequest{Qty: &qty})
	assert.True(t, errors.Is(err, ErrCartNotFound))

	add(t, svc, tomatoesID, pricing.UnitKg, "1")

	_, err = svc.UpdateItem(ctx, userID, spinachID, &UpdateItemRequest{Qty: &qty})
	assert.True(t, errors.Is(err, ErrItemNotFound))

	_, err = svc.UpdateItem(ctx, userID, tomatoesID, &UpdateItemRequest{Qty: &qty, TargetUnit: pricing.UnitGram})
	assert.True(t, errors.Is(err, ErrItemNotFound))

	unit := pricing.UnitBundle
	_, err = svc.UpdateItem(ctx, userID, tomatoesID, &UpdateItemRequest{Unit: &unit})
	assert.True(t, errors.Is(err, pricing.ErrUnitNotOffered))

	_, err = svc.UpdateItem(ctx, userID, tomatoesID, &UpdateItemRequest{})
	assert.Error(t, err)

	zero := d("0")
	_, err = svc.UpdateItem(ctx, userID, tomatoesID, &UpdateItemRequest{Qty: &zero})
	assert.Error(t, err)

	catalog[tomatoesID].IsActive = false
	_, err = svc.UpdateItem(ctx, userID, tomatoesID, &UpdateItemRequest{Qty: &qty})
	assert.True(t, errors.Is(err, product.ErrProductNotFound))
}

func TestRemoveItemRemovesAllUnits(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	add(t, svc, tomatoesID, pricing.UnitKg, "1")
	add(t, svc, tomatoesID, pricing.UnitGram, "500")
	add(t, svc, spinachID, pricing.UnitBundle, "2")

	c, err := svc.RemoveItem(ctx, userID, tomatoesID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, spinachID, c.Items[0].ProductID)
	assert.Equal(t, "30.00", c.Subtotal.StringFixed(2))

	c, err = svc.RemoveItem(ctx, userID, tomatoesID)
	require.NoError(t, err, "removing an absent product is idempotent")
	assert.Len(t, c.Items, 1)
}

func TestRemoveAndClearWithoutCart(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.RemoveItem(ctx, userID, tomatoesID)
	assert.True(t, errors.Is(err, ErrCartNotFound))

	_, err = svc.Clear(ctx, userID)
	assert.True(t, errors.Is(err, ErrCartNotFound))
}

func TestClearEmptiesCart(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	add(t, svc, tomatoesID, pricing.UnitKg, "2")

	c, err := svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.True(t, c.Subtotal.IsZero())

	stored, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err, "clearing keeps the cart row")
	assert.Empty(t, stored.Items)
}

func TestSubtotalInvariantAcrossSequence(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	add(t, svc, tomatoesID, pricing.UnitKg, "1.5")
	add(t, svc, tomatoesID, pricing.UnitGram, "333")
	add(t, svc, spinachID, pricing.UnitBundle, "1")

	qty := d("2")
	_, err := svc.UpdateItem(ctx, userID, spinachID, &UpdateItemRequest{Qty: &qty})
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, userID, tomatoesID)
	require.NoError(t, err)

	add(t, svc, tomatoesID, pricing.UnitGram, "125")

	stored, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assertSubtotalInvariant(t, stored)
	assert.Equal(t, "35.00", stored.Subtotal.StringFixed(2))
}

func TestConcurrentAddItemMayOversell(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	// spinach has 3 bundles; each request fits alone, together they do not
	buyers := []uint{101, 102}
	start := make(chan struct{})
	errs := make([]error, len(buyers))
	var wg sync.WaitGroup
	for i, buyer := range buyers {
		wg.Add(1)
		go func(i int, buyer uint) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.AddItem(ctx, buyer, &AddItemRequest{ProductID: spinachID, Unit: pricing.UnitBundle, Qty: d("2")})
		}(i, buyer)
	}
	close(start)
	wg.Wait()

	total := decimal.Zero
	for i, buyer := range buyers {
		require.NoError(t, errs[i], "buyer %d", buyer)
		c, err := repo.FindByUserID(ctx, buyer)
		require.NoError(t, err)
		require.Len(t, c.Items, 1)
		total = total.Add(c.Items[0].Qty)
	}
	assert.True(t, total.GreaterThan(d("3")), "carts hold %s bundles against a stock of 3", total)
}
