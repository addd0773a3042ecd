package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a catalog entry. The core mutates only variant stock;
// everything else here is owned by catalog admin workflows.
type Product struct {
	ID           uuid.UUID       `gorm:"column:product_id;type:uuid;default:gen_random_uuid();primaryKey" json:"product_id"`
	SKU          string          `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Name         string          `gorm:"column:product_name;not null" json:"product_name"`
	Brand        *string         `gorm:"column:brand" json:"brand,omitempty"`
	Category     *string         `gorm:"column:category" json:"category,omitempty"`
	Description  *string         `gorm:"column:description" json:"description,omitempty"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;default:0" json:"price"`
	TastingNotes pq.StringArray  `gorm:"column:tasting_notes;type:text[]" json:"tasting_notes,omitempty"`
	FoodPairings pq.StringArray  `gorm:"column:food_pairings;type:text[]" json:"food_pairings,omitempty"`
	IsActive     bool            `gorm:"column:is_active;not null" json:"is_active"`
	Variants     []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
