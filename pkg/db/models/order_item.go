package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem records the price actually charged for a line: UnitPrice is the
// effective (possibly discounted) price at checkout time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:order_item_id;type:uuid;default:gen_random_uuid();primaryKey" json:"order_item_id"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	VariantID uuid.UUID       `gorm:"column:variant_id;type:uuid;not null" json:"variant_id"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null" json:"unit_price"`
	TaxAmount decimal.Decimal `gorm:"column:tax_amount;type:numeric(10,2);not null" json:"tax_amount"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }
