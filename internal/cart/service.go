package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/internal/products"
	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type variantLoader interface {
	WithTx(tx *gorm.DB) *products.Repository
	FindVariantForUpdate(ctx context.Context, variantID uuid.UUID) (*products.VariantWithProduct, error)
}

// FindOrCreateResult reports whether the returned cart is new.
type FindOrCreateResult struct {
	Cart    *models.Cart
	Created bool
}

// Service exposes cart operations.
type Service interface {
	FindOrCreate(ctx context.Context, customerID *uuid.UUID) (*FindOrCreateResult, error)
	AddItem(ctx context.Context, cartID, variantID uuid.UUID, quantity int) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, cartItemID uuid.UUID, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, cartItemID uuid.UUID) error
	GetCartWithItems(ctx context.Context, cartID uuid.UUID) (*View, error)
}

type service struct {
	tx       txRunner
	repo     *Repository
	variants variantLoader
}

// NewService wires the cart service.
func NewService(tx txRunner, repo *Repository, variants *products.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if variants == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{tx: tx, repo: repo, variants: variants}, nil
}

// FindOrCreate reuses the customer's latest cart or creates a fresh one.
// Anonymous callers always get a fresh cart.
func (s *service) FindOrCreate(ctx context.Context, customerID *uuid.UUID) (*FindOrCreateResult, error) {
	if customerID != nil {
		existing, err := s.repo.FindByCustomerID(ctx, *customerID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &FindOrCreateResult{Cart: existing, Created: false}, nil
		}
	}
	cart, err := s.repo.Create(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &FindOrCreateResult{Cart: cart, Created: true}, nil
}

// AddItem puts quantity units of a variant into the cart. When the variant
// is already present the quantities merge, and the stock check runs against
// the combined total under a variant row lock.
func (s *service) AddItem(ctx context.Context, cartID, variantID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if _, err := s.repo.FindByID(ctx, cartID); err != nil {
		return nil, err
	}

	var item *models.CartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		variant, err := s.variants.WithTx(tx).FindVariantForUpdate(ctx, variantID)
		if err != nil {
			return err
		}
		if !variant.IsActive {
			return pkgerrors.New(pkgerrors.CodeUnavailable, "this variant is no longer available")
		}

		repo := s.repo.WithTx(tx)
		existing, err := repo.FindItem(ctx, cartID, variantID)
		if err != nil {
			return err
		}

		newQuantity := quantity
		if existing != nil {
			newQuantity = existing.Quantity + quantity
		}
		if variant.StockQuantity < newQuantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("insufficient stock: available %d, requested %d", variant.StockQuantity, newQuantity))
		}

		if existing != nil {
			item, err = repo.UpdateItemQuantity(ctx, existing.ID, newQuantity)
			return err
		}
		item = &models.CartItem{ID: uuid.New(), CartID: cartID, VariantID: variantID, Quantity: quantity}
		return repo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity replaces a line's quantity after re-checking stock.
func (s *service) UpdateItemQuantity(ctx context.Context, cartItemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var item *models.CartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindItemByID(ctx, cartItemID)
		if err != nil {
			return err
		}

		variant, err := s.variants.WithTx(tx).FindVariantForUpdate(ctx, existing.VariantID)
		if err != nil {
			return err
		}
		if variant.StockQuantity < quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("insufficient stock: available %d, requested %d", variant.StockQuantity, quantity))
		}

		item, err = repo.UpdateItemQuantity(ctx, cartItemID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, cartItemID uuid.UUID) error {
	return s.repo.DeleteItem(ctx, cartItemID)
}

// GetCartWithItems returns the computed cart view.
func (s *service) GetCartWithItems(ctx context.Context, cartID uuid.UUID) (*View, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	details, err := s.repo.ListItemDetails(ctx, cartID)
	if err != nil {
		return nil, err
	}
	view := buildView(cart.ID, cart.CustomerID, cart.CreatedAt, details)
	return &view, nil
}
