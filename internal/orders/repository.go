package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/pkg/db"
	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	"github.com/dcastano/vinoteca-backend/pkg/enums"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
	"github.com/dcastano/vinoteca-backend/pkg/pagination"
)

// Repository manages order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
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

// Create inserts the order row.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// CreateItems inserts the order lines.
func (r *Repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// FindByID loads the bare order row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "order_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate loads the order row under a row lock. Call inside a
// transaction; the status machine uses this to serialize transitions.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := db.LockForUpdate(r.db.WithContext(ctx)).First(&order, "order_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type itemRow struct {
	OrderItemID uuid.UUID       `gorm:"column:order_item_id"`
	VariantID   uuid.UUID       `gorm:"column:variant_id"`
	Quantity    int             `gorm:"column:quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price"`
	TaxAmount   decimal.Decimal `gorm:"column:tax_amount"`
	VariantName string          `gorm:"column:variant_name"`
	VariantSKU  *string         `gorm:"column:variant_sku"`
	SizeLabel   *string         `gorm:"column:size_label"`
	VolumeML    *int            `gorm:"column:volume_ml"`
	ProductID   uuid.UUID       `gorm:"column:product_id"`
	ProductName string          `gorm:"column:product_name"`
	Brand       *string         `gorm:"column:brand"`
	ProductSKU  string          `gorm:"column:product_sku"`
}

// FindViewByID composes the order view: the order row plus its lines joined
// with variant and product identification.
func (r *Repository) FindViewByID(ctx context.Context, id uuid.UUID) (*View, error) {
	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var rows []itemRow
	err = r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select(`oi.order_item_id, oi.variant_id, oi.quantity, oi.unit_price, oi.tax_amount,
pv.variant_name, pv.variant_sku, pv.size_label, pv.volume_ml,
p.product_id, p.product_name, p.brand, p.sku AS product_sku`).
		Joins("JOIN product_variants pv ON oi.variant_id = pv.variant_id").
		Joins("JOIN products p ON pv.product_id = p.product_id").
		Where("oi.order_id = ?", id).
		Order("oi.created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]ItemView, 0, len(rows))
	for _, row := range rows {
		lineTotal := row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity))).Add(row.TaxAmount).Round(2)
		lines = append(lines, ItemView{
			OrderItemID: row.OrderItemID,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			TaxAmount:   row.TaxAmount,
			LineTotal:   lineTotal,
			Product: ProductInfo{
				ProductID:   row.ProductID,
				ProductName: row.ProductName,
				Brand:       row.Brand,
				ProductSKU:  row.ProductSKU,
			},
			Variant: VariantInfo{
				VariantID:   row.VariantID,
				VariantName: row.VariantName,
				VariantSKU:  row.VariantSKU,
				SizeLabel:   row.SizeLabel,
				VolumeML:    row.VolumeML,
			},
		})
	}

	return &View{
		Order:      *order,
		GrandTotal: order.TotalAmount.Add(order.TotalTax).Round(2),
		Lines:      lines,
	}, nil
}

// RestorableItem identifies an order line for stock restoration.
type RestorableItem struct {
	VariantID uuid.UUID `gorm:"column:variant_id"`
	ProductID uuid.UUID `gorm:"column:product_id"`
	Quantity  int       `gorm:"column:quantity"`
}

// ListRestorableItems returns the lines of an order with the product ids the
// movement ledger needs.
func (r *Repository) ListRestorableItems(ctx context.Context, orderID uuid.UUID) ([]RestorableItem, error) {
	var items []RestorableItem
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.variant_id, oi.quantity, pv.product_id").
		Joins("JOIN product_variants pv ON oi.variant_id = pv.variant_id").
		Where("oi.order_id = ?", orderID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListByCustomer returns a customer's orders, newest first, with line counts.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]Summary, int64, error) {
	params = params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("customer_id = ?", customerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var summaries []Summary
	err := r.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.*, COUNT(oi.order_item_id) AS item_count").
		Joins("LEFT JOIN order_items oi ON o.order_id = oi.order_id").
		Where("o.customer_id = ?", customerID).
		Group("o.order_id").
		Order("o.created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&summaries).Error
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// ListAll returns every order with customer identification, optionally
// filtered by status.
func (r *Repository) ListAll(ctx context.Context, status *enums.OrderStatus, params pagination.Params) ([]AdminSummary, int64, error) {
	params = params.Normalize()

	countQuery := r.db.WithContext(ctx).Model(&models.Order{})
	if status != nil {
		countQuery = countQuery.Where("order_status = ?", *status)
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).
		Table("orders AS o").
		Select(`o.*, c.full_name AS list_customer_name, c.email AS list_customer_email,
COUNT(oi.order_item_id) AS item_count`).
		Joins("LEFT JOIN customers c ON o.customer_id = c.customer_id").
		Joins("LEFT JOIN order_items oi ON o.order_id = oi.order_id")
	if status != nil {
		query = query.Where("o.order_status = ?", *status)
	}

	var summaries []AdminSummary
	err := query.
		Group("o.order_id, c.full_name, c.email").
		Order("o.created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&summaries).Error
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// UpdateStatus writes the order status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ?", id).
		Updates(map[string]any{"order_status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

// UpdatePaymentStatus writes the payment status.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ?", id).
		Updates(map[string]any{"payment_status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}
