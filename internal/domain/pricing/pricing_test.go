package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var tomatoes = []UnitPrice{
	{Unit: UnitKg, BaseQty: d("1"), Price: d("40"), Stock: d("50")},
	{Unit: UnitGram, BaseQty: d("1000"), Price: d("40"), Stock: d("50000")},
}

func TestPriceLine(t *testing.T) {
	cases := []struct {
		name string
		qty  string
		unit Unit
		want string
	}{
		{"two kg", "2", UnitKg, "80"},
		{"five kg", "5", UnitKg, "200"},
		{"half kg in grams", "500", UnitGram, "20"},
		{"250 grams", "250", UnitGram, "10"},
		{"fractional kg", "1.25", UnitKg, "50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PriceLine(d(tc.qty), tc.unit, tomatoes)
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tc.want)), "got %s", got)
		})
	}
}

func TestPriceLineRoundsHalfUp(t *testing.T) {
	prices := []UnitPrice{{Unit: UnitBundle, BaseQty: d("3"), Price: d("10"), Stock: d("100")}}

	got, err := PriceLine(d("1"), UnitBundle, prices)
	require.NoError(t, err)
	assert.Equal(t, "3.33", got.StringFixed(2))

	got, err = PriceLine(d("2"), UnitBundle, prices)
	require.NoError(t, err)
	assert.Equal(t, "6.67", got.StringFixed(2))

	// 0.125 * 1 = 0.125 -> 0.13
	prices = []UnitPrice{{Unit: UnitPieces, BaseQty: d("1"), Price: d("0.125"), Stock: d("10")}}
	got, err = PriceLine(d("1"), UnitPieces, prices)
	require.NoError(t, err)
	assert.Equal(t, "0.13", got.StringFixed(2))
}

func TestPriceLineUnitNotOffered(t *testing.T) {
	_, err := PriceLine(d("1"), UnitPieces, tomatoes)
	assert.True(t, errors.Is(err, ErrUnitNotOffered))
}

func TestPriceLineRoundsOnceAtTheEnd(t *testing.T) {
	prices := []UnitPrice{{Unit: UnitKg, BaseQty: d("3"), Price: d("10"), Stock: d("100")}}

	q := d("1")
	doubled, err := PriceLine(q.Mul(d("2")), UnitKg, prices)
	require.NoError(t, err)

	raw := q.Mul(d("10")).Div(d("3"))
	assert.True(t, doubled.Equal(raw.Mul(d("2")).Round(2)))

	single, err := PriceLine(q, UnitKg, prices)
	require.NoError(t, err)
	assert.False(t, doubled.Equal(single.Mul(d("2"))), "6.67 must not equal 2 * 3.33")
}

func TestHasStock(t *testing.T) {
	assert.True(t, HasStock(d("50"), UnitKg, tomatoes))
	assert.False(t, HasStock(d("51"), UnitKg, tomatoes))
	assert.True(t, HasStock(d("500"), UnitGram, tomatoes))
	assert.False(t, HasStock(d("1"), UnitBundle, tomatoes), "missing unit is reported as no stock")
}

func TestHasStockIsMonotonic(t *testing.T) {
	for q := 0; q <= 60; q++ {
		qty := decimal.NewFromInt(int64(q))
		if !HasStock(qty, UnitKg, tomatoes) {
			continue
		}
		for lower := 0; lower < q; lower++ {
			assert.True(t, HasStock(decimal.NewFromInt(int64(lower)), UnitKg, tomatoes), "qty %d", lower)
		}
	}
}

func TestDeliveryFeeBoundary(t *testing.T) {
	p := DefaultFeePolicy

	assert.True(t, p.DeliveryFee(d("200")).IsZero())
	assert.True(t, p.DeliveryFee(d("250")).IsZero())
	assert.True(t, p.DeliveryFee(d("199.99")).Equal(d("40")))
	assert.True(t, p.DeliveryFee(d("0")).Equal(d("40")))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(19000), ToMinorUnits(d("190")))
	assert.Equal(t, int64(1999), ToMinorUnits(d("19.99")))
	assert.Equal(t, int64(1), ToMinorUnits(d("0.005")))
}

func TestSubtotal(t *testing.T) {
	assert.True(t, Subtotal(nil).IsZero())
	assert.True(t, Subtotal([]decimal.Decimal{d("80"), d("3.33"), d("0.67")}).Equal(d("84")))
}

func TestUnitValid(t *testing.T) {
	assert.True(t, UnitKg.Valid())
	assert.True(t, UnitBundle.Valid())
	assert.False(t, Unit("litre").Valid())
}
