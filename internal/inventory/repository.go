package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	"github.com/dcastano/vinoteca-backend/pkg/pagination"
)

// MovementRecord is a ledger row joined with variant identification for the
// history endpoint.
type MovementRecord struct {
	models.StockMovement
	VariantName string  `gorm:"column:variant_name" json:"variant_name"`
	VariantSKU  *string `gorm:"column:variant_sku" json:"variant_sku,omitempty"`
}

// Repository reads the stock movement ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a movement repository bound to the provided database.
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

// HistoryByProduct lists movements for a product, newest first, with variant info.
func (r *Repository) HistoryByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]MovementRecord, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []MovementRecord
	err := r.db.WithContext(ctx).
		Table("stock_movements AS sm").
		Select("sm.*, pv.variant_name, pv.variant_sku").
		Joins("LEFT JOIN product_variants pv ON sm.variant_id = pv.variant_id").
		Where("sm.product_id = ?", productID).
		Order("sm.created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListByReference returns all movements tied to a reference (typically an order).
func (r *Repository) ListByReference(ctx context.Context, referenceID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
