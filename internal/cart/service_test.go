package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/internal/products"
	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS products (
  product_id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  product_name TEXT NOT NULL,
  brand TEXT,
  category TEXT,
  description TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
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
CREATE TABLE IF NOT EXISTS carts (
  cart_id TEXT PRIMARY KEY,
  customer_id TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, `
CREATE TABLE IF NOT EXISTS cart_items (
  cart_item_id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE (cart_id, variant_id)
)`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newCartService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(gormTxRunner{db: db}, NewRepository(db), products.NewRepository(db))
	require.NoError(t, err)
	return svc
}

func seedCatalog(t *testing.T, db *gorm.DB, stock int) *models.ProductVariant {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		SKU:      "SKU-" + uuid.NewString()[:8],
		Name:     "Sula Shiraz",
		Price:    decimal.NewFromInt(850),
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)

	discounted := decimal.RequireFromString("799.00")
	variant := &models.ProductVariant{
		ID:              uuid.New(),
		ProductID:       product.ID,
		VariantName:     "750ml",
		Price:           decimal.RequireFromString("850.00"),
		DiscountedPrice: &discounted,
		TaxPercentage:   decimal.RequireFromString("18.0"),
		StockQuantity:   stock,
		Currency:        "INR",
		IsActive:        true,
	}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

func TestFindOrCreateReusesLatestCart(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	customerID := uuid.New()

	first, err := svc.FindOrCreate(ctx, &customerID)
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := svc.FindOrCreate(ctx, &customerID)
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.Cart.ID, second.Cart.ID)

	// Anonymous callers always get a new cart.
	anon, err := svc.FindOrCreate(ctx, nil)
	require.NoError(t, err)
	require.True(t, anon.Created)
}

func TestAddItemMergesQuantities(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	variant := seedCatalog(t, db, 10)

	created, err := svc.FindOrCreate(ctx, nil)
	require.NoError(t, err)
	cartID := created.Cart.ID

	item, err := svc.AddItem(ctx, cartID, variant.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, item.Quantity)

	merged, err := svc.AddItem(ctx, cartID, variant.ID, 4)
	require.NoError(t, err)
	require.Equal(t, item.ID, merged.ID)
	require.Equal(t, 7, merged.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAddItemRejectsMergedTotalOverStock(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	variant := seedCatalog(t, db, 5)

	created, err := svc.FindOrCreate(ctx, nil)
	require.NoError(t, err)
	cartID := created.Cart.ID

	_, err = svc.AddItem(ctx, cartID, variant.ID, 4)
	require.NoError(t, err)

	// 4 already staged; 2 more takes the combined total past stock.
	_, err = svc.AddItem(ctx, cartID, variant.ID, 2)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	// The staged quantity is untouched.
	var item models.CartItem
	require.NoError(t, db.First(&item, "cart_id = ?", cartID).Error)
	require.Equal(t, 4, item.Quantity)
}

func TestAddItemRejectsInactiveVariant(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	variant := seedCatalog(t, db, 5)
	require.NoError(t, db.Model(&models.ProductVariant{}).
		Where("variant_id = ?", variant.ID).
		Update("is_active", false).Error)

	created, err := svc.FindOrCreate(ctx, nil)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, created.Cart.ID, variant.ID, 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnavailable, typed.Code())
}

func TestUpdateItemQuantityChecksStock(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	variant := seedCatalog(t, db, 5)

	created, err := svc.FindOrCreate(ctx, nil)
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, created.Cart.ID, variant.ID, 2)
	require.NoError(t, err)

	updated, err := svc.UpdateItemQuantity(ctx, item.ID, 5)
	require.NoError(t, err)
	require.Equal(t, 5, updated.Quantity)

	_, err = svc.UpdateItemQuantity(ctx, item.ID, 6)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	_, err = svc.UpdateItemQuantity(ctx, item.ID, 0)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRemoveItem(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	variant := seedCatalog(t, db, 5)

	created, err := svc.FindOrCreate(ctx, nil)
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, created.Cart.ID, variant.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, item.ID))

	err = svc.RemoveItem(ctx, item.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetCartWithItemsComputesTotals(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	variant := seedCatalog(t, db, 10)

	created, err := svc.FindOrCreate(ctx, nil)
	require.NoError(t, err)
	cartID := created.Cart.ID

	_, err = svc.AddItem(ctx, cartID, variant.ID, 2)
	require.NoError(t, err)

	view, err := svc.GetCartWithItems(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, 2, view.Summary.ItemCount)
	require.Equal(t, 1, view.Summary.UniqueItems)

	// Discounted price 799 applies: 2 * 799 = 1598, tax 18% = 287.64.
	require.True(t, view.Summary.Subtotal.Equal(decimal.RequireFromString("1598.00")),
		"subtotal %s", view.Summary.Subtotal)
	require.True(t, view.Summary.TotalTax.Equal(decimal.RequireFromString("287.64")),
		"tax %s", view.Summary.TotalTax)
	require.True(t, view.Summary.GrandTotal.Equal(decimal.RequireFromString("1885.64")),
		"total %s", view.Summary.GrandTotal)

	line := view.Items[0]
	require.True(t, line.Pricing.EffectivePrice.Equal(decimal.RequireFromString("799.00")))
	require.Equal(t, "Sula Shiraz", line.Product.ProductName)
	require.Equal(t, 10, line.Variant.StockQuantity)
}

func TestGetCartWithItemsUnknownCart(t *testing.T) {
	db := newCartTestDB(t)
	svc := newCartService(t, db)

	_, err := svc.GetCartWithItems(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
