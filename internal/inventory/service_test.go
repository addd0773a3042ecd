package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/pkg/enums"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
	"github.com/dcastano/vinoteca-backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func TestServiceAdjustRoundTrip(t *testing.T) {
	db := newInventoryTestDB(t)
	variant := seedVariant(t, db, 10)

	svc, err := NewService(gormTxRunner{db: db}, NewRepository(db), nil)
	require.NoError(t, err)
	ctx := context.Background()

	result, err := svc.Adjust(ctx, AdjustInput{
		ProductID:      variant.ProductID,
		VariantID:      variant.ID,
		QuantityChange: -4,
		Reason:         enums.MovementReasonOrderPlaced,
	})
	require.NoError(t, err)
	require.Equal(t, 6, result.NewQuantity)

	page, err := svc.History(ctx, variant.ProductID, pagination.Params{})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	require.Equal(t, -4, page.Items[0].QuantityChange)
}

func TestServiceAdjustInsufficientStock(t *testing.T) {
	db := newInventoryTestDB(t)
	variant := seedVariant(t, db, 1)

	svc, err := NewService(gormTxRunner{db: db}, NewRepository(db), nil)
	require.NoError(t, err)

	_, err = svc.Adjust(context.Background(), AdjustInput{
		VariantID:      variant.ID,
		QuantityChange: -2,
		Reason:         enums.MovementReasonOrderPlaced,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
}
