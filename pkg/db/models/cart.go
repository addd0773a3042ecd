package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a customer's staged items prior to checkout. A customer may
// accumulate several carts over time; find-or-create always reuses the most
// recently created one.
type Cart struct {
	ID         uuid.UUID  `gorm:"column:cart_id;type:uuid;default:gen_random_uuid();primaryKey" json:"cart_id"`
	CustomerID *uuid.UUID `gorm:"column:customer_id;type:uuid;index" json:"customer_id,omitempty"`
	Items      []CartItem `gorm:"foreignKey:CartID;references:ID" json:"items,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Cart) TableName() string { return "carts" }
