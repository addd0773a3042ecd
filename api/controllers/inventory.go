package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dcastano/vinoteca-backend/api/responses"
	"github.com/dcastano/vinoteca-backend/api/validators"
	"github.com/dcastano/vinoteca-backend/internal/inventory"
	"github.com/dcastano/vinoteca-backend/pkg/enums"
	"github.com/dcastano/vinoteca-backend/pkg/logger"
	"github.com/dcastano/vinoteca-backend/pkg/pagination"
)

type adjustStockRequest struct {
	ProductID      uuid.UUID  `json:"product_id" validate:"required"`
	VariantID      uuid.UUID  `json:"variant_id" validate:"required"`
	QuantityChange int        `json:"quantity_change" validate:"required"`
	Reason         string     `json:"reason" validate:"required"`
	ReferenceID    *uuid.UUID `json:"reference_id,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// AdjustStock applies a signed manual stock adjustment and records it in the
// movement ledger.
func AdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adjustStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Adjust(r.Context(), inventory.AdjustInput{
			ProductID:      req.ProductID,
			VariantID:      req.VariantID,
			QuantityChange: req.QuantityChange,
			Reason:         enums.MovementReason(validators.SanitizeString(req.Reason, 64)),
			ReferenceID:    req.ReferenceID,
			Notes:          req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// StockHistory serves a product's movement ledger, newest first.
func StockHistory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.History(r.Context(), productID, pagination.FromQuery(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
