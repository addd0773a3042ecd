package controllers

import (
	"net/http"
	"strings"

	"github.com/dcastano/vinoteca-backend/api/responses"
	"github.com/dcastano/vinoteca-backend/api/validators"
	"github.com/dcastano/vinoteca-backend/internal/orders"
	"github.com/dcastano/vinoteca-backend/pkg/enums"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
	"github.com/dcastano/vinoteca-backend/pkg/logger"
	"github.com/dcastano/vinoteca-backend/pkg/pagination"
)

type updateOrderStatusRequest struct {
	OrderStatus string `json:"order_status" validate:"required"`
}

type updatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

// GetOrder serves the composed order view.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListOrders serves a customer's orders when customer_id is given, or the
// admin list (optionally filtered by status) otherwise.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := pagination.FromQuery(r.URL.Query())

		customerID, err := validators.ParseQueryUUID(r, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if customerID != nil {
			page, err := svc.ListByCustomer(r.Context(), *customerID, params)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, page)
			return
		}

		var status *enums.OrderStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "unknown order status").WithDetails(map[string]any{"status": raw}))
				return
			}
			status = &parsed
		}

		page, err := svc.ListAll(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// UpdateOrderStatus drives the order state machine. Cancelling restores
// stock atomically with the status write.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, parseErr := enums.ParseOrderStatus(req.OrderStatus)
		if parseErr != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "unknown order status").WithDetails(map[string]any{"order_status": req.OrderStatus}))
			return
		}
		result, err := svc.UpdateStatus(r.Context(), orderID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// UpdatePaymentStatus flips the payment flag; no lattice beyond the enum.
func UpdatePaymentStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updatePaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, parseErr := enums.ParsePaymentStatus(req.PaymentStatus)
		if parseErr != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "unknown payment status").WithDetails(map[string]any{"payment_status": req.PaymentStatus}))
			return
		}
		if err := svc.UpdatePaymentStatus(r.Context(), orderID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"order_id": orderID, "payment_status": status})
	}
}
