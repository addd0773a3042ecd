package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/pkg/db"
	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
	"github.com/dcastano/vinoteca-backend/pkg/pagination"
)

// DefaultVariantStock is the stock a synthesized "Default" variant starts
// with when a direct checkout references a product that has no variants.
const DefaultVariantStock = 9999

// VariantWithProduct joins a variant with the catalog fields checkout and
// cart validation need.
type VariantWithProduct struct {
	models.ProductVariant
	ProductName string `gorm:"column:product_name" json:"product_name"`
}

// Repository manages catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
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

// FindByID loads a product with its variants.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(q *gorm.DB) *gorm.DB { return q.Order("created_at ASC") }).
		First(&product, "product_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListActive returns active products with their variants, newest first.
func (r *Repository) ListActive(ctx context.Context, params pagination.Params) ([]models.Product, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(q *gorm.DB) *gorm.DB { return q.Order("created_at ASC") }).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindVariantWithProduct loads a variant joined with its product name.
func (r *Repository) FindVariantWithProduct(ctx context.Context, variantID uuid.UUID) (*VariantWithProduct, error) {
	return r.variantQuery(ctx, r.db.WithContext(ctx), "pv.variant_id = ?", variantID)
}

// FindVariantForUpdate loads a variant under a row lock. Call inside a
// transaction; the lock holds until commit or rollback.
func (r *Repository) FindVariantForUpdate(ctx context.Context, variantID uuid.UUID) (*VariantWithProduct, error) {
	return r.variantQuery(ctx, db.LockForUpdate(r.db.WithContext(ctx)), "pv.variant_id = ?", variantID)
}

// FirstActiveVariantForUpdate resolves the oldest active variant of a
// product under a row lock. A nil result with nil error means the product
// has no active variants.
func (r *Repository) FirstActiveVariantForUpdate(ctx context.Context, productID uuid.UUID) (*VariantWithProduct, error) {
	variant, err := r.variantQuery(ctx, db.LockForUpdate(r.db.WithContext(ctx)),
		"pv.product_id = ? AND pv.is_active = ?", productID, true)
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
		return nil, nil
	}
	return variant, err
}

func (r *Repository) variantQuery(ctx context.Context, q *gorm.DB, cond string, args ...any) (*VariantWithProduct, error) {
	var row VariantWithProduct
	err := q.
		Table("product_variants AS pv").
		Select("pv.*, p.product_name").
		Joins("JOIN products p ON pv.product_id = p.product_id").
		Where(cond, args...).
		Order("pv.created_at ASC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateDefaultVariant synthesizes a "Default" variant for a product that
// has none. The price comes from the caller (checkout may carry an override,
// otherwise the product list price).
func (r *Repository) CreateDefaultVariant(ctx context.Context, product *models.Product, price decimal.Decimal) (*VariantWithProduct, error) {
	variant := models.ProductVariant{
		ID:            uuid.New(),
		ProductID:     product.ID,
		VariantName:   "Default",
		Price:         price,
		StockQuantity: DefaultVariantStock,
		Currency:      "INR",
		IsActive:      true,
	}
	if err := r.db.WithContext(ctx).Create(&variant).Error; err != nil {
		return nil, err
	}
	return &VariantWithProduct{ProductVariant: variant, ProductName: product.Name}, nil
}
