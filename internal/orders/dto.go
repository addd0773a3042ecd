package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dcastano/vinoteca-backend/pkg/db/models"
)

// View is the composed order the API returns: the order row, its grand
// total, and the item lines joined with catalog details.
type View struct {
	models.Order
	GrandTotal decimal.Decimal `json:"grand_total"`
	Lines      []ItemView      `json:"items"`
}

// ItemView is one order line with its product and variant identification.
type ItemView struct {
	OrderItemID uuid.UUID       `json:"order_item_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Product     ProductInfo     `json:"product"`
	Variant     VariantInfo     `json:"variant"`
}

type ProductInfo struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Brand       *string   `json:"brand,omitempty"`
	ProductSKU  string    `json:"product_sku"`
}

type VariantInfo struct {
	VariantID   uuid.UUID `json:"variant_id"`
	VariantName string    `json:"variant_name"`
	VariantSKU  *string   `json:"variant_sku,omitempty"`
	SizeLabel   *string   `json:"size_label,omitempty"`
	VolumeML    *int      `json:"volume_ml,omitempty"`
}

// Summary is an order list row with its line count.
type Summary struct {
	models.Order
	ItemCount int `gorm:"column:item_count" json:"item_count"`
}

// AdminSummary adds customer identification for the admin list.
type AdminSummary struct {
	Summary
	ListCustomerName  *string `gorm:"column:list_customer_name" json:"customer_name,omitempty"`
	ListCustomerEmail *string `gorm:"column:list_customer_email" json:"customer_email,omitempty"`
}
