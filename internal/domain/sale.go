package domain

// PaymentMethod represents how a sale was paid.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCreditCard    PaymentMethod = "credit_card"
	PaymentDebitCard     PaymentMethod = "debit_card"
	PaymentMobilePayment PaymentMethod = "mobile_payment"
)

// Valid reports whether the payment method is one of the accepted values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentMobilePayment:
		return true
	}
	return false
}

// SaleStatus represents the state of a sale. Transitions are not guarded:
// a sale may be updated from any status to any other status.
type SaleStatus string

const (
	SaleCompleted      SaleStatus = "completed"
	SalePartialPayment SaleStatus = "partial_payment"
	SaleRefunded       SaleStatus = "refunded"
	SalePartialRefund  SaleStatus = "partial_refund"
	SaleCancelled      SaleStatus = "cancelled"
)

// Valid reports whether the status is one of the accepted values.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleCompleted, SalePartialPayment, SaleRefunded, SalePartialRefund, SaleCancelled:
		return true
	}
	return false
}

// SaleItem is one line of a sale. ProductID and VariantID are weak
// references resolved by lookup at sale time.
type SaleItem struct {
	ProductID   string  `json:"product_id"`
	VariantID   string  `json:"variant_id,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	ProductName string  `json:"product_name,omitempty"`
}

// Sale represents a recorded transaction
type Sale struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customer_id,omitempty"`
	Items           []SaleItem    `json:"items"`
	Subtotal        float64       `json:"subtotal"`
	Total           float64       `json:"total"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	CashierID       string        `json:"cashier_id"`
	Timestamp       string        `json:"timestamp,omitempty"`
	Status          SaleStatus    `json:"status"`
	PaidAmount      *float64      `json:"paid_amount,omitempty"`
	RemainingAmount *float64      `json:"remaining_amount,omitempty"`
}
