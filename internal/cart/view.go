package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dcastano/vinoteca-backend/internal/pricing"
)

// View is the computed cart the API returns: lines with a pricing breakdown
// plus a summary block. Nothing here is persisted.
type View struct {
	CartID     uuid.UUID  `json:"cart_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	Items      []LineView `json:"items"`
	Summary    Summary    `json:"summary"`
}

type LineView struct {
	CartItemID uuid.UUID   `json:"cart_item_id"`
	VariantID  uuid.UUID   `json:"variant_id"`
	Quantity   int         `json:"quantity"`
	AddedAt    time.Time   `json:"added_at"`
	Product    ProductInfo `json:"product"`
	Variant    VariantInfo `json:"variant"`
	Pricing    LinePricing `json:"pricing"`
}

type ProductInfo struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Brand       *string   `json:"brand,omitempty"`
	Category    *string   `json:"category,omitempty"`
	ProductSKU  string    `json:"product_sku"`
}

type VariantInfo struct {
	SizeLabel         *string          `json:"size_label,omitempty"`
	VolumeML          *int             `json:"volume_ml,omitempty"`
	VariantSKU        *string          `json:"variant_sku,omitempty"`
	AlcoholPercentage *decimal.Decimal `json:"alcohol_percentage,omitempty"`
	IsActive          bool             `json:"is_active"`
	StockQuantity     int              `json:"stock_quantity"`
}

type LinePricing struct {
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	EffectivePrice  decimal.Decimal  `json:"effective_price"`
	TaxPercentage   decimal.Decimal  `json:"tax_percentage"`
	LineSubtotal    decimal.Decimal  `json:"line_subtotal"`
	LineTax         decimal.Decimal  `json:"line_tax"`
	LineTotal       decimal.Decimal  `json:"line_total"`
	Currency        string           `json:"currency"`
}

type Summary struct {
	ItemCount   int             `json:"item_count"`
	UniqueItems int             `json:"unique_items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

func buildView(cartID uuid.UUID, customerID *uuid.UUID, createdAt time.Time, details []ItemDetail) View {
	var totals pricing.Totals
	itemCount := 0
	items := make([]LineView, 0, len(details))

	for _, d := range details {
		line := pricing.PriceLine(d.PricingVariant(), d.Quantity)
		totals.Add(line)
		itemCount += d.Quantity

		items = append(items, LineView{
			CartItemID: d.CartItemID,
			VariantID:  d.VariantID,
			Quantity:   d.Quantity,
			AddedAt:    d.AddedAt,
			Product: ProductInfo{
				ProductID:   d.ProductID,
				ProductName: d.ProductName,
				Brand:       d.Brand,
				Category:    d.Category,
				ProductSKU:  d.ProductSKU,
			},
			Variant: VariantInfo{
				SizeLabel:         d.SizeLabel,
				VolumeML:          d.VolumeML,
				VariantSKU:        d.VariantSKU,
				AlcoholPercentage: d.AlcoholPercentage,
				IsActive:          d.VariantActive,
				StockQuantity:     d.StockQuantity,
			},
			Pricing: LinePricing{
				UnitPrice:       d.Price,
				DiscountedPrice: d.DiscountedPrice,
				EffectivePrice:  line.UnitPrice,
				TaxPercentage:   d.TaxPercentage,
				LineSubtotal:    line.Subtotal.Round(2),
				LineTax:         line.TaxAmount(),
				LineTotal:       line.Subtotal.Add(line.Tax).Round(2),
				Currency:        d.Currency,
			},
		})
	}

	return View{
		CartID:     cartID,
		CustomerID: customerID,
		CreatedAt:  createdAt,
		Items:      items,
		Summary: Summary{
			ItemCount:   itemCount,
			UniqueItems: len(items),
			Subtotal:    totals.Amount(),
			TotalTax:    totals.Tax(),
			GrandTotal:  totals.GrandTotal(),
		},
	}
}
