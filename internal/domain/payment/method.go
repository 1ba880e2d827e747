package payment

import "strings"

// Method is the closed payment-method enumeration. Each value maps onto
// exactly one balance ledger; they are never mixed.
type Method string

const (
	MethodCreditCard Method = "CREDIT_CARD"
	MethodPaypay     Method = "PAYPAY"
	MethodPoint      Method = "POINT"
)

// ParseMethod maps a label onto the enumeration, failing fast on unknown
// values instead of defaulting.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToUpper(s)) {
	case MethodCreditCard:
		return MethodCreditCard, nil
	case MethodPaypay:
		return MethodPaypay, nil
	case MethodPoint:
		return MethodPoint, nil
	}
	return "", ErrInvalidMethod
}

func (m Method) String() string { return string(m) }

// Status is the payment lifecycle enumeration.
type Status string

const (
	StatusInitiated         Status = "INITIATED"
	StatusCompleted         Status = "COMPLETED"
	StatusFailed            Status = "FAILED"
	StatusCanceled          Status = "CANCELED"
	StatusRefunded          Status = "REFUNDED"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
)
