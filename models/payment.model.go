package models

// PaymentStatus tracks payment independently of fulfilment
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Accepted payment methods. No gateway is called, the method is recorded on the order.
const (
	PaymentMethodCard           = "card"
	PaymentMethodCrypto         = "crypto"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
)
