package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/pkg/db"
	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	"github.com/dcastano/vinoteca-backend/pkg/enums"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
)

// Adjustment describes one stock change. QuantityChange is signed: negative
// deducts, positive restores. SkipHistory suppresses the ledger row; that
// path is for privileged corrections only, never for order flows.
type Adjustment struct {
	ProductID      uuid.UUID
	VariantID      uuid.UUID
	QuantityChange int
	Reason         enums.MovementReason
	ReferenceID    *uuid.UUID
	Notes          *string
	SkipHistory    bool
}

// Result reports the applied adjustment. Movement is nil when history
// recording was bypassed.
type Result struct {
	PreviousQuantity int
	NewQuantity      int
	Movement         *models.StockMovement
}

// Apply executes one adjustment inside the caller's transaction: lock the
// variant row, reject any change that would take stock negative, write the
// new quantity, and append the movement. The row lock holds until the
// caller's transaction ends, so concurrent checkouts serialize here.
func Apply(tx *gorm.DB, adj Adjustment) (*Result, error) {
	if adj.VariantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if adj.QuantityChange == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity change must be non-zero")
	}
	if adj.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	var variant models.ProductVariant
	err := db.LockForUpdate(tx).
		Take(&variant, "variant_id = ?", adj.VariantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking variant")
	}

	previous := variant.StockQuantity
	next := previous + adj.QuantityChange
	if next < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("insufficient stock: available %d, change %d", previous, adj.QuantityChange))
	}

	if err := tx.Model(&models.ProductVariant{}).
		Where("variant_id = ?", adj.VariantID).
		Updates(map[string]any{"stock_quantity": next, "updated_at": time.Now().UTC()}).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating stock")
	}

	result := &Result{PreviousQuantity: previous, NewQuantity: next}
	if adj.SkipHistory {
		return result, nil
	}

	productID := adj.ProductID
	if productID == uuid.Nil {
		productID = variant.ProductID
	}
	movement := &models.StockMovement{
		ID:               uuid.New(),
		ProductID:        productID,
		VariantID:        adj.VariantID,
		QuantityChange:   adj.QuantityChange,
		PreviousQuantity: &previous,
		NewQuantity:      &next,
		Reason:           adj.Reason,
		ReferenceID:      adj.ReferenceID,
		Notes:            adj.Notes,
	}
	if err := tx.Create(movement).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording stock movement")
	}
	result.Movement = movement
	return result, nil
}

// Restore increments stock by quantity without snapshotting before/after
// quantities on the movement, matching the cancellation ledger shape.
func Restore(tx *gorm.DB, productID, variantID uuid.UUID, quantity int, referenceID uuid.UUID) (*models.StockMovement, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restore quantity must be positive")
	}

	res := tx.Model(&models.ProductVariant{}).
		Where("variant_id = ?", variantID).
		Updates(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", quantity),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "restoring stock")
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}

	movement := &models.StockMovement{
		ID:             uuid.New(),
		ProductID:      productID,
		VariantID:      variantID,
		QuantityChange: quantity,
		Reason:         enums.MovementReasonOrderCancelled,
		ReferenceID:    &referenceID,
	}
	if err := tx.Create(movement).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording restore movement")
	}
	return movement, nil
}
