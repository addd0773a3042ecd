package enums

// MovementReason explains why stock changed. The value is free-form so
// admin adjustments can supply their own label; the constants below are the
// reasons the system itself writes.
type MovementReason string

const (
	MovementReasonOrderPlaced    MovementReason = "ORDER_PLACED"
	MovementReasonOrderCancelled MovementReason = "ORDER_CANCELLED"
)

// String implements fmt.Stringer.
func (m MovementReason) String() string {
	return string(m)
}
