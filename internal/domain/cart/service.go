// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/domain/pricing"
	"github.com/veggiefresh/grocery-backend/internal/domain/product"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
)

var (
	ErrCartNotFound      = apperror.NotFound("cart not found")
	ErrItemNotFound      = apperror.NotFound("item not found in cart")
	ErrInsufficientStock = apperror.New(apperror.KindInsufficientStock, "insufficient stock")
)

// Service handles cart business logic.
//
// Stock is checked against the product as read at the start of each mutation and is
// not reserved, so concurrent mutations on the same product can both pass the check.
// Carts may therefore jointly hold more than the stock. This is accepted; stock is
// not decremented at checkout either.
type Service struct {
	repo     Repository
	products ProductLookup
	log      logrus.FieldLogger
}

// NewService creates a new cart service
func NewService(repo Repository, products ProductLookup, log logrus.FieldLogger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		log:      log,
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID uint            `json:"productId" binding:"required"`
	Unit      pricing.Unit    `json:"unit" binding:"required,oneof=kg g pcs bundle"`
	Qty       decimal.Decimal `json:"qty"`
}

// UpdateItemRequest represents update cart item request. TargetUnit, when set,
// selects the (product, unit) line to update instead of the first line of the product.
type UpdateItemRequest struct {
	Unit       *pricing.Unit    `json:"unit" binding:"omitempty,oneof=kg g pcs bundle"`
	Qty        *decimal.Decimal `json:"qty"`
	TargetUnit pricing.Unit     `json:"-"`
}

// GetCart returns the user's cart; a user without one gets an empty cart
func (s *Service) GetCart(ctx context.Context, userID uint) (*Cart, error) {
	c, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return NewCart(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return c, nil
}

// AddItem adds qty of a product unit, merging into an existing (product, unit) line
func (s *Service) AddItem(ctx context.Context, userID uint, req *AddItemRequest) (*Cart, error) {
	if !req.Qty.IsPositive() {
		return nil, apperror.Validation("qty must be greater than 0", map[string]string{"qty": "must be greater than 0"})
	}

	prod, err := s.products.FindActiveByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	table := prod.PriceTable()
	up, ok := pricing.FindUnitPrice(req.Unit, table)
	if !ok {
		return nil, pricing.ErrUnitNotOffered
	}
	if !pricing.HasStock(req.Qty, req.Unit, table) {
		return nil, insufficientStock(up)
	}

	c, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		c = NewCart(userID)
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	if idx := c.FindLine(req.ProductID, req.Unit); idx >= 0 {
		// Merge with the existing line; stock is validated for the combined quantity
		combined := c.Items[idx].Qty.Add(req.Qty)
		if !pricing.HasStock(combined, req.Unit, table) {
			return nil, insufficientStock(up)
		}

		price, err := pricing.PriceLine(combined, req.Unit, table)
		if err != nil {
			return nil, err
		}

		c.Items[idx].Qty = combined
		c.Items[idx].Price = price
	} else {
		price, err := pricing.PriceLine(req.Qty, req.Unit, table)
		if err != nil {
			return nil, err
		}

		c.Items = append(c.Items, CartItem{
			ProductID: prod.ID,
			Name:      prod.Name,
			Image:     prod.PrimaryImage(),
			Unit:      req.Unit,
			Qty:       req.Qty,
			UnitPrice: up.Price,
			Price:     price,
		})
	}

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": req.ProductID,
		"unit":       req.Unit,
		"qty":        req.Qty.String(),
	}).Debug("cart item added")

	return c, nil
}

// UpdateItem changes the unit and/or quantity of a product's line and reprices it
// against the current catalog record
func (s *Service) UpdateItem(ctx context.Context, userID, productID uint, req *UpdateItemRequest) (*Cart, error) {
	if req.Unit == nil && req.Qty == nil {
		return nil, apperror.Validation("nothing to update", map[string]string{"unit": "or qty is required"})
	}
	if req.Qty != nil && !req.Qty.IsPositive() {
		return nil, apperror.Validation("qty must be greater than 0", map[string]string{"qty": "must be greater than 0"})
	}

	c, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var idx int
	if req.TargetUnit != "" {
		idx = c.FindLine(productID, req.TargetUnit)
	} else {
		idx = c.FindFirstByProduct(productID)
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	line := c.Items[idx]
	newUnit := line.Unit
	if req.Unit != nil {
		newUnit = *req.Unit
	}
	newQty := line.Qty
	if req.Qty != nil {
		newQty = *req.Qty
	}

	prod, err := s.products.FindActiveByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	table := prod.PriceTable()
	up, ok := pricing.FindUnitPrice(newUnit, table)
	if !ok {
		return nil, pricing.ErrUnitNotOffered
	}

	// A unit change onto a unit already in the cart folds the two lines together
	other := -1
	if newUnit != line.Unit {
		other = c.FindLine(productID, newUnit)
		if other >= 0 {
			newQty = newQty.Add(c.Items[other].Qty)
		}
	}

	if !pricing.HasStock(newQty, newUnit, table) {
		return nil, insufficientStock(up)
	}

	price, err := pricing.PriceLine(newQty, newUnit, table)
	if err != nil {
		return nil, err
	}

	if newUnit != line.Unit {
		line.UnitPrice = up.Price
	}
	line.Unit = newUnit
	line.Qty = newQty
	line.Price = price
	c.Items[idx] = line

	if other >= 0 {
		c.Items = append(c.Items[:other], c.Items[other+1:]...)
	}

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// RemoveItem removes every line of a product. Removing an absent product is not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) (*Cart, error) {
	c, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.RemoveProduct(productID)

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties the user's cart
func (s *Service) Clear(ctx context.Context, userID uint) (*Cart, error) {
	c, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.Clear()

	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	c.Recalculate()
	if err := s.repo.Save(ctx, c); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func insufficientStock(up pricing.UnitPrice) error {
	err := *ErrInsufficientStock
	err.Details = map[string]string{
		"unit":      string(up.Unit),
		"available": up.Stock.String(),
	}
	return &err
}

// compile-time check that the catalog service can back the cart
var _ ProductLookup = (*product.Service)(nil)
