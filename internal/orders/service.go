package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/internal/inventory"
	"github.com/dcastano/vinoteca-backend/pkg/enums"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
	"github.com/dcastano/vinoteca-backend/pkg/logger"
	"github.com/dcastano/vinoteca-backend/pkg/metrics"
	"github.com/dcastano/vinoteca-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StatusResult reports the outcome of a status transition.
type StatusResult struct {
	OrderID        uuid.UUID         `json:"order_id"`
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	NewStatus      enums.OrderStatus `json:"new_status"`
	UnitsRestored  int               `json:"units_restored"`
}

// Service exposes order reads and status transitions.
type Service interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*View, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (pagination.Page[Summary], error)
	ListAll(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (pagination.Page[AdminSummary], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*StatusResult, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error
}

type service struct {
	tx      txRunner
	repo    *Repository
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
}

// NewService builds the orders service. metrics may be nil.
func NewService(tx txRunner, repo *Repository, m *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, metrics: m, logg: logg}, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.repo.FindViewByID(ctx, id)
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (pagination.Page[Summary], error) {
	params = params.Normalize()
	items, total, err := s.repo.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return pagination.Page[Summary]{}, err
	}
	return pagination.NewPage(items, total, params), nil
}

func (s *service) ListAll(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (pagination.Page[AdminSummary], error) {
	if status != nil && !status.IsValid() {
		return pagination.Page[AdminSummary]{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status.String()))
	}
	params = params.Normalize()
	items, total, err := s.repo.ListAll(ctx, status, params)
	if err != nil {
		return pagination.Page[AdminSummary]{}, err
	}
	return pagination.NewPage(items, total, params), nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*StatusResult, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status.String()))
	}

	var result StatusResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order.OrderStatus.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is %s and cannot change status", order.OrderStatus))
		}

		restored := 0
		if status == enums.OrderStatusCancelled && order.OrderStatus != enums.OrderStatusCancelled {
			items, err := repo.ListRestorableItems(ctx, id)
			if err != nil {
				return err
			}
			for _, item := range items {
				if _, err := inventory.Restore(tx, item.ProductID, item.VariantID, item.Quantity, id); err != nil {
					return err
				}
				restored += item.Quantity
			}
		}

		if err := repo.UpdateStatus(ctx, id, status); err != nil {
			return err
		}

		result = StatusResult{
			OrderID:        id,
			PreviousStatus: order.OrderStatus,
			NewStatus:      status,
			UnitsRestored:  restored,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.NewStatus == enums.OrderStatusCancelled {
		s.metrics.IncCancellation()
		lctx := s.logg.WithOrderID(ctx, id.String())
		lctx = s.logg.WithField(lctx, "units_restored", result.UnitsRestored)
		s.logg.Info(lctx, "order cancelled, stock restored")
	}
	return &result, nil
}

func (s *service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", status.String()))
	}
	return s.repo.UpdatePaymentStatus(ctx, id, status)
}
