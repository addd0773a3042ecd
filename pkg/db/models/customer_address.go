package models

import (
	"time"

	"github.com/google/uuid"
)

type CustomerAddress struct {
	ID           uuid.UUID `gorm:"column:address_id;type:uuid;default:gen_random_uuid();primaryKey" json:"address_id"`
	CustomerID   uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	AddressLine1 string    `gorm:"column:address_line1;not null" json:"address_line1"`
	AddressLine2 *string   `gorm:"column:address_line2" json:"address_line2,omitempty"`
	City         string    `gorm:"column:city;not null" json:"city"`
	State        string    `gorm:"column:state;not null" json:"state"`
	Pincode      string    `gorm:"column:pincode;not null" json:"pincode"`
	Country      string    `gorm:"column:country;not null;default:'India'" json:"country"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CustomerAddress) TableName() string { return "customer_addresses" }
