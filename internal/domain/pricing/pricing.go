// internal/domain/pricing/pricing.go
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
)

// Unit is a selling unit for a product
type Unit string

const (
	UnitKg     Unit = "kg"
	UnitGram   Unit = "g"
	UnitPieces Unit = "pcs"
	UnitBundle Unit = "bundle"
)

// Valid reports whether u is a known selling unit
func (u Unit) Valid() bool {
	switch u {
	case UnitKg, UnitGram, UnitPieces, UnitBundle:
		return true
	}
	return false
}

// ErrUnitNotOffered is returned when a product has no price entry for a unit
var ErrUnitNotOffered = apperror.New(apperror.KindUnitNotOffered, "unit not available for this product")

// UnitPrice is one price/stock offering: Price is charged per BaseQty of Unit.
// Stock is expressed in BaseQty multiples of the same unit.
type UnitPrice struct {
	Unit    Unit
	BaseQty decimal.Decimal
	Price   decimal.Decimal
	Stock   decimal.Decimal
}

// FeePolicy is the flat delivery fee rule
type FeePolicy struct {
	FlatFee       decimal.Decimal
	FreeThreshold decimal.Decimal
}

// DefaultFeePolicy charges 40 below a subtotal of 200
var DefaultFeePolicy = FeePolicy{
	FlatFee:       decimal.NewFromInt(40),
	FreeThreshold: decimal.NewFromInt(200),
}

var hundred = decimal.NewFromInt(100)

// FindUnitPrice returns the entry for unit
func FindUnitPrice(unit Unit, prices []UnitPrice) (UnitPrice, bool) {
	for _, up := range prices {
		if up.Unit == unit {
			return up, true
		}
	}
	return UnitPrice{}, false
}

// PriceLine computes round2(qty / baseQty * price) for the matching unit
func PriceLine(qty decimal.Decimal, unit Unit, prices []UnitPrice) (decimal.Decimal, error) {
	up, ok := FindUnitPrice(unit, prices)
	if !ok {
		return decimal.Zero, ErrUnitNotOffered
	}
	if !up.BaseQty.IsPositive() {
		return decimal.Zero, apperror.Internal("invalid base quantity for unit "+string(unit), nil)
	}

	// rounded once, after the division
	return qty.Mul(up.Price).Div(up.BaseQty).Round(2), nil
}

// HasStock reports whether qty of unit fits in the entry's stock.
// A missing unit yields false.
func HasStock(qty decimal.Decimal, unit Unit, prices []UnitPrice) bool {
	up, ok := FindUnitPrice(unit, prices)
	if !ok || !up.BaseQty.IsPositive() {
		return false
	}
	return qty.Div(up.BaseQty).LessThanOrEqual(up.Stock)
}

// Subtotal sums line totals
func Subtotal(lines []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l)
	}
	return total
}

// DeliveryFee applies the flat fee below the free threshold
func (p FeePolicy) DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(p.FreeThreshold) {
		return p.FlatFee
	}
	return decimal.Zero
}

// ToMinorUnits converts an amount to integer minor units (paise)
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
