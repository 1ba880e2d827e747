package order

import "strings"

// Status is the closed order lifecycle enumeration.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusCompleted         Status = "COMPLETED"
	StatusShipped           Status = "SHIPPED"
	StatusDelivered         Status = "DELIVERED"
	StatusRefunded          Status = "REFUNDED"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
	StatusCancelled         Status = "CANCELLED"
	StatusPaymentFailed     Status = "PAYMENT_FAILED"
)

// ParseStatus maps a label onto the closed enumeration. Unknown labels fail
// fast rather than defaulting.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(s)) {
	case StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusShipped:
		return StatusShipped, nil
	case StatusDelivered:
		return StatusDelivered, nil
	case StatusRefunded:
		return StatusRefunded, nil
	case StatusPartiallyRefunded:
		return StatusPartiallyRefunded, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusPaymentFailed:
		return StatusPaymentFailed, nil
	}
	return "", ErrInvalidStatus
}

// SettableDirectly reports whether a status may be requested through the
// status-update operation. Refund statuses are side effects of the payment
// flow, CANCELLED of the cancel operation, and PAYMENT_FAILED of a failed
// payment creation; none may be set directly.
func (s Status) SettableDirectly() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }
