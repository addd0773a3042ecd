package customers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
)

// Repository manages customer and address persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a customer repository bound to the provided database.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// WithTx rebinds the repository to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a customer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).First(&customer, "customer_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// RequireAgeVerified loads a customer and fails unless they have passed age
// verification. Checkout calls this before touching any stock.
func (r *Repository) RequireAgeVerified(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !customer.IsAgeVerified {
		return nil, pkgerrors.New(pkgerrors.CodeAgeVerification, "age verification required before checkout")
	}
	return customer, nil
}

// CreateAddress persists an inline shipping address.
func (r *Repository) CreateAddress(ctx context.Context, address *models.CustomerAddress) error {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(address).Error
}
