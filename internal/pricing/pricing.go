package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dcastano/vinoteca-backend/pkg/db/models"
)

var hundred = decimal.NewFromInt(100)

// Line is the priced breakdown of a single order or cart line. Subtotal and
// Tax are unrounded; the stored tax amount is rounded separately so the
// running totals keep full precision.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
}

// Totals accumulates lines and rounds only at the aggregate.
type Totals struct {
	amount decimal.Decimal
	tax    decimal.Decimal
}

// EffectivePrice returns the price actually charged for a variant: the
// discounted price when one is set, the list price otherwise.
func EffectivePrice(variant *models.ProductVariant) decimal.Decimal {
	if variant.DiscountedPrice != nil {
		return *variant.DiscountedPrice
	}
	return variant.Price
}

// PriceLine computes the subtotal and tax for quantity units of a variant.
func PriceLine(variant *models.ProductVariant, quantity int) Line {
	unit := EffectivePrice(variant)
	subtotal := unit.Mul(decimal.NewFromInt(int64(quantity)))
	tax := subtotal.Mul(variant.TaxPercentage).Div(hundred)
	return Line{
		UnitPrice: unit,
		Quantity:  quantity,
		Subtotal:  subtotal,
		Tax:       tax,
	}
}

// TaxAmount returns the line tax rounded to two decimals for storage.
func (l Line) TaxAmount() decimal.Decimal {
	return l.Tax.Round(2)
}

// Add folds a line into the running totals.
func (t *Totals) Add(line Line) {
	t.amount = t.amount.Add(line.Subtotal)
	t.tax = t.tax.Add(line.Tax)
}

// Amount returns the order subtotal rounded to two decimals.
func (t Totals) Amount() decimal.Decimal {
	return t.amount.Round(2)
}

// Tax returns the order tax rounded to two decimals.
func (t Totals) Tax() decimal.Decimal {
	return t.tax.Round(2)
}

// GrandTotal is the rounded amount plus the rounded tax.
func (t Totals) GrandTotal() decimal.Decimal {
	return t.Amount().Add(t.Tax())
}
