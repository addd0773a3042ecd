package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout and inventory activity.
type CheckoutMetrics struct {
	duration          *prometheus.HistogramVec
	success           *prometheus.CounterVec
	failure           *prometheus.CounterVec
	stockAdjustments  *prometheus.CounterVec
	insufficientStock prometheus.Counter
	cancellations     prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_success",
		Help: "Successful checkouts.",
	}, []string{"mode"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failure",
		Help: "Failed checkouts.",
	}, []string{"mode"})
	stockAdjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments",
		Help: "Stock adjustments applied, by reason.",
	}, []string{"reason"})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_insufficient",
		Help: "Adjustments rejected because stock would go negative.",
	})
	cancellations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled",
		Help: "Orders cancelled with stock restored.",
	})
	reg.MustRegister(duration, success, failure, stockAdjustments, insufficientStock, cancellations)
	return &CheckoutMetrics{
		duration:          duration,
		success:           success,
		failure:           failure,
		stockAdjustments:  stockAdjustments,
		insufficientStock: insufficientStock,
		cancellations:     cancellations,
	}
}

// ObserveDuration records the duration for a checkout in the given mode.
func (c *CheckoutMetrics) ObserveDuration(mode string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the given checkout mode.
func (c *CheckoutMetrics) IncSuccess(mode string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncFailure increments the failure counter for the given checkout mode.
func (c *CheckoutMetrics) IncFailure(mode string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncStockAdjustment increments the adjustment counter for a reason label.
func (c *CheckoutMetrics) IncStockAdjustment(reason string) {
	if c == nil || c.stockAdjustments == nil {
		return
	}
	c.stockAdjustments.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncInsufficientStock counts an adjustment rejected for insufficient stock.
func (c *CheckoutMetrics) IncInsufficientStock() {
	if c == nil || c.insufficientStock == nil {
		return
	}
	c.insufficientStock.Inc()
}

// IncCancellation counts a cancelled order.
func (c *CheckoutMetrics) IncCancellation() {
	if c == nil || c.cancellations == nil {
		return
	}
	c.cancellations.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
