package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dcastano/vinoteca-backend/pkg/enums"
)

// Order is the checkout outcome. Totals are snapshotted at placement time
// and never recomputed from the items afterwards.
type Order struct {
	ID                uuid.UUID           `gorm:"column:order_id;type:uuid;default:gen_random_uuid();primaryKey" json:"order_id"`
	CustomerID        *uuid.UUID          `gorm:"column:customer_id;type:uuid;index" json:"customer_id,omitempty"`
	ShippingAddressID *uuid.UUID          `gorm:"column:shipping_address_id;type:uuid" json:"shipping_address_id,omitempty"`
	BillingAddressID  *uuid.UUID          `gorm:"column:billing_address_id;type:uuid" json:"billing_address_id,omitempty"`
	TotalAmount       decimal.Decimal     `gorm:"column:total_amount;type:numeric(10,2);not null" json:"total_amount"`
	TotalTax          decimal.Decimal     `gorm:"column:total_tax;type:numeric(10,2);not null" json:"total_tax"`
	OrderStatus       enums.OrderStatus   `gorm:"column:order_status;not null;default:'PENDING'" json:"order_status"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;not null;default:'UNPAID'" json:"payment_status"`
	PaymentMethod     string              `gorm:"column:payment_method;not null;default:'cod'" json:"payment_method"`
	CustomerEmail     *string             `gorm:"column:customer_email" json:"customer_email,omitempty"`
	CustomerName      *string             `gorm:"column:customer_name" json:"customer_name,omitempty"`
	OrderNotes        *string             `gorm:"column:order_notes" json:"order_notes,omitempty"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;references:ID" json:"items,omitempty"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }
