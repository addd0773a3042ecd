package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dcastano/vinoteca-backend/pkg/enums"
)

// StockMovement is an append-only ledger row for every stock change.
// PreviousQuantity and NewQuantity are nullable: cancellation restores use a
// relative increment and leave them unset.
type StockMovement struct {
	ID               uuid.UUID            `gorm:"column:movement_id;type:uuid;default:gen_random_uuid();primaryKey" json:"movement_id"`
	ProductID        uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	VariantID        uuid.UUID            `gorm:"column:variant_id;type:uuid;not null;index" json:"variant_id"`
	QuantityChange   int                  `gorm:"column:quantity_change;not null" json:"quantity_change"`
	PreviousQuantity *int                 `gorm:"column:previous_quantity" json:"previous_quantity,omitempty"`
	NewQuantity      *int                 `gorm:"column:new_quantity" json:"new_quantity,omitempty"`
	Reason           enums.MovementReason `gorm:"column:reason;not null" json:"reason"`
	ReferenceID      *uuid.UUID           `gorm:"column:reference_id;type:uuid;index" json:"reference_id,omitempty"`
	Notes            *string              `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StockMovement) TableName() string { return "stock_movements" }
