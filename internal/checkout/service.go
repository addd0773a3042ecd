package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dcastano/vinoteca-backend/internal/cart"
	"github.com/dcastano/vinoteca-backend/internal/customers"
	"github.com/dcastano/vinoteca-backend/internal/inventory"
	"github.com/dcastano/vinoteca-backend/internal/orders"
	"github.com/dcastano/vinoteca-backend/internal/pricing"
	"github.com/dcastano/vinoteca-backend/internal/products"
	"github.com/dcastano/vinoteca-backend/pkg/db/models"
	"github.com/dcastano/vinoteca-backend/pkg/enums"
	pkgerrors "github.com/dcastano/vinoteca-backend/pkg/errors"
	"github.com/dcastano/vinoteca-backend/pkg/logger"
	"github.com/dcastano/vinoteca-backend/pkg/metrics"
)

const defaultPaymentMethod = "cod"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// FromCartInput places an order from an existing cart.
type FromCartInput struct {
	CartID            uuid.UUID  `json:"cart_id" validate:"required"`
	CustomerID        *uuid.UUID `json:"customer_id,omitempty"`
	ShippingAddressID *uuid.UUID `json:"shipping_address_id,omitempty"`
	BillingAddressID  *uuid.UUID `json:"billing_address_id,omitempty"`
	PaymentMethod     string     `json:"payment_method,omitempty"`
	OrderNotes        *string    `json:"order_notes,omitempty"`
}

// DirectItem is one requested line of a direct checkout. Either VariantID or
// ProductID must be set; UnitPrice overrides the catalog price when present.
type DirectItem struct {
	ProductID *uuid.UUID       `json:"product_id,omitempty"`
	VariantID *uuid.UUID       `json:"variant_id,omitempty"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// AddressInput is an inline shipping address saved during direct checkout.
type AddressInput struct {
	AddressLine1 string  `json:"address_line1" validate:"required"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city" validate:"required"`
	State        string  `json:"state" validate:"required"`
	Pincode      string  `json:"pincode" validate:"required"`
	Country      string  `json:"country,omitempty"`
}

// DirectInput places an order without a cart. A nil CustomerID is a guest
// order; the email/name fields identify the guest on the order row.
type DirectInput struct {
	CustomerID      *uuid.UUID    `json:"customer_id,omitempty"`
	Items           []DirectItem  `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *AddressInput `json:"shipping_address,omitempty"`
	PaymentMethod   string        `json:"payment_method,omitempty"`
	OrderNotes      *string       `json:"order_notes,omitempty"`
	CustomerEmail   *string       `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerName    *string       `json:"customer_name,omitempty"`
}

// Service converts carts and direct item lists into persisted orders while
// deducting stock under row locks.
type Service interface {
	FromCart(ctx context.Context, input FromCartInput) (*orders.View, error)
	Direct(ctx context.Context, input DirectInput) (*orders.View, error)
}

type service struct {
	tx        txRunner
	carts     *cart.Repository
	products  *products.Repository
	customers *customers.Repository
	orders    *orders.Repository
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
}

// NewService builds the checkout orchestrator. metrics may be nil.
func NewService(
	tx txRunner,
	carts *cart.Repository,
	productRepo *products.Repository,
	customerRepo *customers.Repository,
	orderRepo *orders.Repository,
	m *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:        tx,
		carts:     carts,
		products:  productRepo,
		customers: customerRepo,
		orders:    orderRepo,
		metrics:   m,
		logg:      logg,
	}, nil
}

// resolvedLine is a validated, price-snapshotted line ready to persist.
type resolvedLine struct {
	productID uuid.UUID
	variantID uuid.UUID
	quantity  int
	priced    pricing.Line
}

func (s *service) FromCart(ctx context.Context, input FromCartInput) (*orders.View, error) {
	start := time.Now()
	view, err := s.fromCart(ctx, input)
	s.finish(ctx, "cart", start, view, err)
	return view, err
}

func (s *service) fromCart(ctx context.Context, input FromCartInput) (*orders.View, error) {
	if input.CartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id is required")
	}

	var view *orders.View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if input.CustomerID != nil {
			if _, err := s.customers.WithTx(tx).RequireAgeVerified(ctx, *input.CustomerID); err != nil {
				return err
			}
		}

		cartRepo := s.carts.WithTx(tx)
		if _, err := cartRepo.FindByID(ctx, input.CartID); err != nil {
			return err
		}
		details, err := cartRepo.ListItemDetailsForUpdate(ctx, input.CartID)
		if err != nil {
			return err
		}
		if len(details) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		lines := make([]resolvedLine, 0, len(details))
		for _, detail := range details {
			if !detail.VariantActive {
				return pkgerrors.New(pkgerrors.CodeUnavailable,
					fmt.Sprintf("%s is no longer available", detail.ProductName))
			}
			if detail.StockQuantity < detail.Quantity {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock for %s: %d available, %d requested",
						detail.ProductName, detail.StockQuantity, detail.Quantity))
			}
			lines = append(lines, resolvedLine{
				productID: detail.ProductID,
				variantID: detail.VariantID,
				quantity:  detail.Quantity,
				priced:    pricing.PriceLine(detail.PricingVariant(), detail.Quantity),
			})
		}

		view, err = s.commit(ctx, tx, lines, orderFields{
			customerID:        input.CustomerID,
			shippingAddressID: input.ShippingAddressID,
			billingAddressID:  input.BillingAddressID,
			paymentMethod:     input.PaymentMethod,
			orderNotes:        input.OrderNotes,
		})
		if err != nil {
			return err
		}

		return cartRepo.ClearItems(ctx, input.CartID)
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) Direct(ctx context.Context, input DirectInput) (*orders.View, error) {
	start := time.Now()
	view, err := s.direct(ctx, input)
	s.finish(ctx, "direct", start, view, err)
	return view, err
}

func (s *service) direct(ctx context.Context, input DirectInput) (*orders.View, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for i, item := range input.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: quantity must be at least 1", i))
		}
		if item.ProductID == nil && item.VariantID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d: product_id or variant_id is required", i))
		}
	}

	var view *orders.View
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if input.CustomerID != nil {
			if _, err := s.customers.WithTx(tx).RequireAgeVerified(ctx, *input.CustomerID); err != nil {
				return err
			}
		}

		var shippingAddressID *uuid.UUID
		if input.ShippingAddress != nil && input.CustomerID != nil {
			address := &models.CustomerAddress{
				CustomerID:   *input.CustomerID,
				AddressLine1: input.ShippingAddress.AddressLine1,
				AddressLine2: input.ShippingAddress.AddressLine2,
				City:         input.ShippingAddress.City,
				State:        input.ShippingAddress.State,
				Pincode:      input.ShippingAddress.Pincode,
				Country:      input.ShippingAddress.Country,
			}
			if address.Country == "" {
				address.Country = "India"
			}
			if err := s.customers.WithTx(tx).CreateAddress(ctx, address); err != nil {
				return err
			}
			shippingAddressID = &address.ID
		}

		lines := make([]resolvedLine, 0, len(input.Items))
		for _, item := range input.Items {
			line, err := s.resolveDirectItem(ctx, tx, item)
			if err != nil {
				return err
			}
			lines = append(lines, *line)
		}

		var err error
		view, err = s.commit(ctx, tx, lines, orderFields{
			customerID:        input.CustomerID,
			shippingAddressID: shippingAddressID,
			paymentMethod:     input.PaymentMethod,
			orderNotes:        input.OrderNotes,
			customerEmail:     input.CustomerEmail,
			customerName:      input.CustomerName,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// resolveDirectItem locks the variant the item refers to, falling back from
// an explicit variant to the product's first active variant, and finally
// synthesizing a default variant for products with no variants at all.
func (s *service) resolveDirectItem(ctx context.Context, tx *gorm.DB, item DirectItem) (*resolvedLine, error) {
	repo := s.products.WithTx(tx)

	var variant *products.VariantWithProduct
	switch {
	case item.VariantID != nil:
		found, err := repo.FindVariantForUpdate(ctx, *item.VariantID)
		if err != nil {
			return nil, err
		}
		variant = found
	default:
		product, err := repo.FindByID(ctx, *item.ProductID)
		if err != nil {
			return nil, err
		}
		variant, err = repo.FirstActiveVariantForUpdate(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		if variant == nil {
			price := product.Price
			if item.UnitPrice != nil {
				price = *item.UnitPrice
			}
			variant, err = repo.CreateDefaultVariant(ctx, product, price)
			if err != nil {
				return nil, err
			}
		}
	}

	if variant.StockQuantity < item.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("insufficient stock for %s: %d available, %d requested",
				variant.ProductName, variant.StockQuantity, item.Quantity))
	}

	priceBasis := variant.ProductVariant
	if item.UnitPrice != nil {
		priceBasis.Price = *item.UnitPrice
		priceBasis.DiscountedPrice = nil
	}
	return &resolvedLine{
		productID: variant.ProductID,
		variantID: variant.ID,
		quantity:  item.Quantity,
		priced:    pricing.PriceLine(&priceBasis, item.Quantity),
	}, nil
}

type orderFields struct {
	customerID        *uuid.UUID
	shippingAddressID *uuid.UUID
	billingAddressID  *uuid.UUID
	paymentMethod     string
	orderNotes        *string
	customerEmail     *string
	customerName      *string
}

// commit persists the order and its lines, then deducts stock line by line.
// Runs inside the caller's transaction; any failure rolls the whole order
// back.
func (s *service) commit(ctx context.Context, tx *gorm.DB, lines []resolvedLine, fields orderFields) (*orders.View, error) {
	var totals pricing.Totals
	for _, line := range lines {
		totals.Add(line.priced)
	}

	paymentMethod := fields.paymentMethod
	if paymentMethod == "" {
		paymentMethod = defaultPaymentMethod
	}

	orderRepo := s.orders.WithTx(tx)
	order := &models.Order{
		CustomerID:        fields.customerID,
		ShippingAddressID: fields.shippingAddressID,
		BillingAddressID:  fields.billingAddressID,
		TotalAmount:       totals.Amount(),
		TotalTax:          totals.Tax(),
		OrderStatus:       enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusUnpaid,
		PaymentMethod:     paymentMethod,
		CustomerEmail:     fields.customerEmail,
		CustomerName:      fields.customerName,
		OrderNotes:        fields.orderNotes,
	}
	if err := orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			OrderID:   order.ID,
			VariantID: line.variantID,
			Quantity:  line.quantity,
			UnitPrice: line.priced.UnitPrice,
			TaxAmount: line.priced.TaxAmount(),
		})
	}
	if err := orderRepo.CreateItems(ctx, items); err != nil {
		return nil, err
	}

	for _, line := range lines {
		_, err := inventory.Apply(tx, inventory.Adjustment{
			ProductID:      line.productID,
			VariantID:      line.variantID,
			QuantityChange: -line.quantity,
			Reason:         enums.MovementReasonOrderPlaced,
			ReferenceID:    &order.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	return orderRepo.FindViewByID(ctx, order.ID)
}

func (s *service) finish(ctx context.Context, mode string, start time.Time, view *orders.View, err error) {
	s.metrics.ObserveDuration(mode, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(mode)
		if coded := pkgerrors.As(err); coded != nil && coded.Code() == pkgerrors.CodeInsufficientStock {
			s.metrics.IncInsufficientStock()
		}
		return
	}
	s.metrics.IncSuccess(mode)
	lctx := s.logg.WithOrderID(ctx, view.Order.ID.String())
	lctx = s.logg.WithFields(lctx, map[string]any{
		"mode":         mode,
		"total_amount": view.Order.TotalAmount.String(),
		"line_count":   len(view.Lines),
	})
	s.logg.Info(lctx, "checkout completed")
}
