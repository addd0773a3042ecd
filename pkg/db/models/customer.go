package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a storefront account. IsAgeVerified gates checkout; guest
// customers created during direct checkout start unverified.
type Customer struct {
	ID            uuid.UUID  `gorm:"column:customer_id;type:uuid;default:gen_random_uuid();primaryKey" json:"customer_id"`
	FullName      *string    `gorm:"column:full_name" json:"full_name,omitempty"`
	Email         *string    `gorm:"column:email;uniqueIndex" json:"email,omitempty"`
	Phone         *string    `gorm:"column:phone" json:"phone,omitempty"`
	DateOfBirth   *time.Time `gorm:"column:date_of_birth;type:date" json:"date_of_birth,omitempty"`
	IsAgeVerified bool       `gorm:"column:is_age_verified;not null;default:false" json:"is_age_verified"`
	IsActive      bool       `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
