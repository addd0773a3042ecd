package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	"github.com/dcastano/vinoteca-backend/pkg/enums"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
	"github.com/dcastano/vinoteca-backend/pkg/logger"
	"github.com/dcastano/vinoteca-backend/pkg/pagination"
)

func newOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS products (
  product_id TEXT PRIMARY KEY,
  sku TEXT NOT NULL,
  product_name TEXT NOT NULL,
  brand TEXT,
  category TEXT,
  description TEXT,
  price NUMERIC NOT NULL,
  tasting_notes TEXT,
  food_pairings TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, `
CREATE TABLE IF NOT EXISTS product_variants (
  variant_id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  variant_name TEXT NOT NULL,
  variant_sku TEXT,
  size_label TEXT,
  volume_ml INTEGER,
  alcohol_percentage NUMERIC,
  price NUMERIC NOT NULL,
  discounted_price NUMERIC,
  tax_percentage NUMERIC NOT NULL DEFAULT 0,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'INR',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, `
CREATE TABLE IF NOT EXISTS customers (
  customer_id TEXT PRIMARY KEY,
  full_name TEXT,
  email TEXT,
  phone TEXT,
  date_of_birth DATETIME,
  is_age_verified INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, `
CREATE TABLE IF NOT EXISTS orders (
  order_id TEXT PRIMARY KEY,
  customer_id TEXT,
  shipping_address_id TEXT,
  billing_address_id TEXT,
  total_amount NUMERIC NOT NULL,
  total_tax NUMERIC NOT NULL,
  order_status TEXT NOT NULL DEFAULT 'PENDING',
  payment_status TEXT NOT NULL DEFAULT 'UNPAID',
  payment_method TEXT NOT NULL DEFAULT 'cod',
  customer_email TEXT,
  customer_name TEXT,
  order_notes TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, `
CREATE TABLE IF NOT EXISTS order_items (
  order_item_id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  tax_amount NUMERIC NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, `
CREATE TABLE IF NOT EXISTS stock_movements (
  movement_id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  quantity_change INTEGER NOT NULL,
  previous_quantity INTEGER,
  new_quantity INTEGER,
  reason TEXT NOT NULL,
  reference_id TEXT,
  notes TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newOrdersService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(gormTxRunner{db: db}, NewRepository(db), nil,
		logger.New(logger.Options{ServiceName: "orders-test"}))
	require.NoError(t, err)
	return svc
}

func seedOrderCatalog(t *testing.T, db *gorm.DB, stock int) (*models.Product, *models.ProductVariant) {
	t.Helper()
	brand := "Sula"
	product := &models.Product{
		ID:       uuid.New(),
		SKU:      "WINE-RED-001",
		Name:     "Rasa Shiraz",
		Brand:    &brand,
		Price:    decimal.NewFromInt(1450),
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)

	tax := decimal.NewFromInt(18)
	variant := &models.ProductVariant{
		ID:            uuid.New(),
		ProductID:     product.ID,
		VariantName:   "750ml",
		Price:         decimal.NewFromInt(1450),
		TaxPercentage: tax,
		StockQuantity: stock,
		Currency:      "INR",
		IsActive:      true,
	}
	require.NoError(t, db.Create(variant).Error)
	return product, variant
}

func placeOrder(t *testing.T, db *gorm.DB, customerID *uuid.UUID, variant *models.ProductVariant, qty int) *models.Order {
	t.Helper()
	repo := NewRepository(db)
	ctx := context.Background()

	unit := variant.Price
	tax := unit.Mul(decimal.NewFromInt(int64(qty))).Mul(variant.TaxPercentage).Div(decimal.NewFromInt(100)).Round(2)
	order := &models.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		TotalAmount: unit.Mul(decimal.NewFromInt(int64(qty))).Round(2),
		TotalTax:    tax,
		OrderStatus: enums.OrderStatusPending,
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = enums.PaymentStatusUnpaid
	}
	require.NoError(t, repo.Create(ctx, order))
	require.NoError(t, repo.CreateItems(ctx, []models.OrderItem{{
		OrderID:   order.ID,
		VariantID: variant.ID,
		Quantity:  qty,
		UnitPrice: unit,
		TaxAmount: tax,
	}}))
	return order
}

func TestGetOrderComposesView(t *testing.T) {
	db := newOrdersTestDB(t)
	_, variant := seedOrderCatalog(t, db, 10)
	order := placeOrder(t, db, nil, variant, 2)

	svc := newOrdersService(t, db)
	view, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	line := view.Lines[0]
	require.Equal(t, 2, line.Quantity)
	require.Equal(t, "1450", line.UnitPrice.String())
	require.Equal(t, "522", line.TaxAmount.String())
	// line total = unit * qty + tax
	require.Equal(t, "3422", line.LineTotal.String())
	require.Equal(t, "Rasa Shiraz", line.Product.ProductName)
	require.Equal(t, "750ml", line.Variant.VariantName)
	require.Equal(t, "3422", view.GrandTotal.String())
}

func TestGetOrderNotFound(t *testing.T) {
	db := newOrdersTestDB(t)
	svc := newOrdersService(t, db)

	_, err := svc.GetOrder(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateStatusCancelRestoresStock(t *testing.T) {
	db := newOrdersTestDB(t)
	_, variant := seedOrderCatalog(t, db, 10)

	// Simulate placement having already deducted stock.
	require.NoError(t, db.Model(&models.ProductVariant{}).
		Where("variant_id = ?", variant.ID).
		Update("stock_quantity", 7).Error)
	order := placeOrder(t, db, nil, variant, 3)

	svc := newOrdersService(t, db)
	result, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPending, result.PreviousStatus)
	require.Equal(t, enums.OrderStatusCancelled, result.NewStatus)
	require.Equal(t, 3, result.UnitsRestored)

	var persisted models.ProductVariant
	require.NoError(t, db.First(&persisted, "variant_id = ?", variant.ID).Error)
	require.Equal(t, 10, persisted.StockQuantity)

	var movement models.StockMovement
	require.NoError(t, db.First(&movement, "variant_id = ?", variant.ID).Error)
	require.Equal(t, enums.MovementReasonOrderCancelled, movement.Reason)
	require.Equal(t, 3, movement.QuantityChange)
	require.Nil(t, movement.PreviousQuantity)
	require.Nil(t, movement.NewQuantity)
	require.NotNil(t, movement.ReferenceID)
	require.Equal(t, order.ID, *movement.ReferenceID)
}

func TestUpdateStatusCancelledIsTerminal(t *testing.T) {
	db := newOrdersTestDB(t)
	_, variant := seedOrderCatalog(t, db, 10)
	order := placeOrder(t, db, nil, variant, 2)

	svc := newOrdersService(t, db)
	ctx := context.Background()
	_, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled)
	require.NoError(t, err)

	for _, next := range []enums.OrderStatus{enums.OrderStatusCancelled, enums.OrderStatusConfirmed} {
		_, err = svc.UpdateStatus(ctx, order.ID, next)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	}

	// Double-cancel must not restore stock twice.
	var persisted models.ProductVariant
	require.NoError(t, db.First(&persisted, "variant_id = ?", variant.ID).Error)
	require.Equal(t, 12, persisted.StockQuantity)
}

func TestUpdateStatusForwardTransitionSkipsRestore(t *testing.T) {
	db := newOrdersTestDB(t)
	_, variant := seedOrderCatalog(t, db, 10)
	order := placeOrder(t, db, nil, variant, 2)

	svc := newOrdersService(t, db)
	result, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	require.Equal(t, 0, result.UnitsRestored)

	var movements int64
	require.NoError(t, db.Model(&models.StockMovement{}).Count(&movements).Error)
	require.Zero(t, movements)
}

func TestUpdateStatusRejectsInvalidValue(t *testing.T) {
	db := newOrdersTestDB(t)
	svc := newOrdersService(t, db)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatus("TELEPORTED"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdatePaymentStatus(t *testing.T) {
	db := newOrdersTestDB(t)
	_, variant := seedOrderCatalog(t, db, 10)
	order := placeOrder(t, db, nil, variant, 1)

	svc := newOrdersService(t, db)
	ctx := context.Background()
	require.NoError(t, svc.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusPaid))

	var persisted models.Order
	require.NoError(t, db.First(&persisted, "order_id = ?", order.ID).Error)
	require.Equal(t, enums.PaymentStatusPaid, persisted.PaymentStatus)

	err := svc.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatus("MAYBE"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestListByCustomerCountsItems(t *testing.T) {
	db := newOrdersTestDB(t)
	_, variant := seedOrderCatalog(t, db, 50)
	customerID := uuid.New()
	require.NoError(t, db.Create(&models.Customer{ID: customerID}).Error)

	placeOrder(t, db, &customerID, variant, 2)
	placeOrder(t, db, &customerID, variant, 1)
	placeOrder(t, db, nil, variant, 4) // guest order, excluded

	svc := newOrdersService(t, db)
	page, err := svc.ListByCustomer(context.Background(), customerID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	for _, summary := range page.Items {
		require.Equal(t, 1, summary.ItemCount)
	}
}

func TestListAllFiltersByStatus(t *testing.T) {
	db := newOrdersTestDB(t)
	_, variant := seedOrderCatalog(t, db, 50)
	name := "Priya Nair"
	email := "priya@example.com"
	customerID := uuid.New()
	require.NoError(t, db.Create(&models.Customer{ID: customerID, FullName: &name, Email: &email}).Error)

	first := placeOrder(t, db, &customerID, variant, 1)
	placeOrder(t, db, nil, variant, 2)

	svc := newOrdersService(t, db)
	ctx := context.Background()
	_, err := svc.UpdateStatus(ctx, first.ID, enums.OrderStatusConfirmed)
	require.NoError(t, err)

	confirmed := enums.OrderStatusConfirmed
	page, err := svc.ListAll(ctx, &confirmed, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].ListCustomerName)
	require.Equal(t, "Priya Nair", *page.Items[0].ListCustomerName)

	all, err := svc.ListAll(ctx, nil, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, all.Total)
}
