package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem links a cart to a variant. The (cart_id, variant_id) pair is
// unique; adding the same variant again merges quantities instead of
// inserting a second row.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:cart_item_id;type:uuid;default:gen_random_uuid();primaryKey" json:"cart_item_id"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_variant" json:"cart_id"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_variant" json:"variant_id"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CartItem) TableName() string { return "cart_items" }
