package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is the purchasable unit (a bottle size of a product).
// StockQuantity is the single mutable quantity of record; it must only be
// written through the stock adjustment engine so every change lands in the
// movement ledger.
type ProductVariant struct {
	ID                uuid.UUID        `gorm:"column:variant_id;type:uuid;default:gen_random_uuid();primaryKey" json:"variant_id"`
	ProductID         uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	VariantName       string           `gorm:"column:variant_name;not null" json:"variant_name"`
	VariantSKU        *string          `gorm:"column:variant_sku;uniqueIndex" json:"variant_sku,omitempty"`
	SizeLabel         *string          `gorm:"column:size_label" json:"size_label,omitempty"`
	VolumeML          *int             `gorm:"column:volume_ml" json:"volume_ml,omitempty"`
	AlcoholPercentage *decimal.Decimal `gorm:"column:alcohol_percentage;type:numeric(5,2)" json:"alcohol_percentage,omitempty"`
	Price             decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	DiscountedPrice   *decimal.Decimal `gorm:"column:discounted_price;type:numeric(10,2)" json:"discounted_price,omitempty"`
	TaxPercentage     decimal.Decimal  `gorm:"column:tax_percentage;type:numeric(5,2);not null;default:0" json:"tax_percentage"`
	StockQuantity     int              `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	Currency          string           `gorm:"column:currency;not null;default:'INR'" json:"currency"`
	IsActive          bool             `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProductVariant) TableName() string { return "product_variants" }
