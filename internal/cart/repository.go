package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/pkg/db"
	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
)

// ItemDetail is a cart line joined with the variant and product fields the
// view and checkout need.
type ItemDetail struct {
	CartItemID        uuid.UUID        `gorm:"column:cart_item_id" json:"cart_item_id"`
	VariantID         uuid.UUID        `gorm:"column:variant_id" json:"variant_id"`
	Quantity          int              `gorm:"column:quantity" json:"quantity"`
	AddedAt           time.Time        `gorm:"column:added_at" json:"added_at"`
	SizeLabel         *string          `gorm:"column:size_label" json:"size_label,omitempty"`
	VolumeML          *int             `gorm:"column:volume_ml" json:"volume_ml,omitempty"`
	Price             decimal.Decimal  `gorm:"column:price" json:"price"`
	DiscountedPrice   *decimal.Decimal `gorm:"column:discounted_price" json:"discounted_price,omitempty"`
	TaxPercentage     decimal.Decimal  `gorm:"column:tax_percentage" json:"tax_percentage"`
	StockQuantity     int              `gorm:"column:stock_quantity" json:"stock_quantity"`
	AlcoholPercentage *decimal.Decimal `gorm:"column:alcohol_percentage" json:"alcohol_percentage,omitempty"`
	Currency          string           `gorm:"column:currency" json:"currency"`
	VariantSKU        *string          `gorm:"column:variant_sku" json:"variant_sku,omitempty"`
	VariantActive     bool             `gorm:"column:variant_active" json:"variant_active"`
	ProductID         uuid.UUID        `gorm:"column:product_id" json:"product_id"`
	ProductName       string           `gorm:"column:product_name" json:"product_name"`
	Brand             *string          `gorm:"column:brand" json:"brand,omitempty"`
	Category          *string          `gorm:"column:category" json:"category,omitempty"`
	ProductSKU        string           `gorm:"column:product_sku" json:"product_sku"`
}

// PricingVariant projects the line onto the fields the price calculator reads.
func (d ItemDetail) PricingVariant() *models.ProductVariant {
	return &models.ProductVariant{
		Price:           d.Price,
		DiscountedPrice: d.DiscountedPrice,
		TaxPercentage:   d.TaxPercentage,
	}
}

const itemDetailColumns = `ci.cart_item_id, ci.variant_id, ci.quantity, ci.created_at AS added_at,
pv.size_label, pv.volume_ml, pv.price, pv.discounted_price, pv.tax_percentage, pv.stock_quantity,
pv.alcohol_percentage, pv.currency, pv.variant_sku, pv.is_active AS variant_active,
p.product_id, p.product_name, p.brand, p.category, p.sku AS product_sku`

// Repository manages cart persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
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

// FindByID loads a cart by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).First(&cart, "cart_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByCustomerID returns the customer's most recently created cart, or nil.
func (r *Repository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Take(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart, optionally bound to a customer.
func (r *Repository) Create(ctx context.Context, customerID *uuid.UUID) (*models.Cart, error) {
	cart := &models.Cart{ID: uuid.New(), CustomerID: customerID}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// FindItem returns the cart line for a variant, or nil when absent.
func (r *Repository) FindItem(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByID loads a cart line by its own id.
func (r *Repository) FindItemByID(ctx context.Context, cartItemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).First(&item, "cart_item_id = ?", cartItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Create(item).Error
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "variant already in cart")
	}
	return err
}

// UpdateItemQuantity sets the quantity on an existing line.
func (r *Repository) UpdateItemQuantity(ctx context.Context, cartItemID uuid.UUID, quantity int) (*models.CartItem, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_item_id = ?", cartItemID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return r.FindItemByID(ctx, cartItemID)
}

// DeleteItem removes a cart line.
func (r *Repository) DeleteItem(ctx context.Context, cartItemID uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_item_id = ?", cartItemID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// ClearItems removes every line from a cart. Checkout calls this after the
// order is persisted, inside the same transaction.
func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}

// ListItemDetails returns the joined cart lines in insertion order.
func (r *Repository) ListItemDetails(ctx context.Context, cartID uuid.UUID) ([]ItemDetail, error) {
	return r.listDetails(r.db.WithContext(ctx), cartID)
}

// ListItemDetailsForUpdate is ListItemDetails with the variant rows locked.
// Call inside a transaction.
func (r *Repository) ListItemDetailsForUpdate(ctx context.Context, cartID uuid.UUID) ([]ItemDetail, error) {
	return r.listDetails(db.LockForUpdate(r.db.WithContext(ctx)), cartID)
}

func (r *Repository) listDetails(q *gorm.DB, cartID uuid.UUID) ([]ItemDetail, error) {
	var details []ItemDetail
	err := q.
		Table("cart_items AS ci").
		Select(itemDetailColumns).
		Joins("JOIN product_variants pv ON ci.variant_id = pv.variant_id").
		Joins("JOIN products p ON pv.product_id = p.product_id").
		Where("ci.cart_id = ?", cartID).
		Order("ci.created_at ASC").
		Find(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}
