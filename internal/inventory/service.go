package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/pkg/enums"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
	"github.com/dcastano/vinoteca-backend/pkg/metrics"
	"github.com/dcastano/vinoteca-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AdjustInput is the admin stock adjustment request.
type AdjustInput struct {
	ProductID      uuid.UUID
	VariantID      uuid.UUID
	QuantityChange int
	Reason         enums.MovementReason
	ReferenceID    *uuid.UUID
	Notes          *string
	// SkipHistory bypasses the ledger. Reserved for privileged
	// corrections; the API never sets it.
	SkipHistory bool
}

// Service exposes standalone stock adjustments and ledger reads.
type Service interface {
	Adjust(ctx context.Context, input AdjustInput) (*Result, error)
	History(ctx context.Context, productID uuid.UUID, params pagination.Params) (pagination.Page[MovementRecord], error)
}

type service struct {
	tx      txRunner
	repo    *Repository
	metrics *metrics.CheckoutMetrics
}

// NewService wires the inventory service.
func NewService(tx txRunner, repo *Repository, m *metrics.CheckoutMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{tx: tx, repo: repo, metrics: m}, nil
}

// Adjust applies a single stock change in its own transaction.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*Result, error) {
	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := Apply(tx, Adjustment{
			ProductID:      input.ProductID,
			VariantID:      input.VariantID,
			QuantityChange: input.QuantityChange,
			Reason:         input.Reason,
			ReferenceID:    input.ReferenceID,
			Notes:          input.Notes,
			SkipHistory:    input.SkipHistory,
		})
		if err != nil {
			return err
		}
		result = applied
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
			s.metrics.IncInsufficientStock()
		}
		return nil, err
	}
	s.metrics.IncStockAdjustment(input.Reason.String())
	return result, nil
}

func (s *service) History(ctx context.Context, productID uuid.UUID, params pagination.Params) (pagination.Page[MovementRecord], error) {
	params = params.Normalize()
	records, total, err := s.repo.HistoryByProduct(ctx, productID, params)
	if err != nil {
		return pagination.Page[MovementRecord]{}, err
	}
	return pagination.NewPage(records, total, params), nil
}
