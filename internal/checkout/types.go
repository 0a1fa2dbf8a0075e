package checkout

// Donor identifies who is paying. For authenticated donors the fields come
// from the JWT claims; guests supply them on the form.
type Donor struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
	Guest bool   `json:"guest"`
}

// DonationIntent is everything the donor committed to on the form. It is
// captured once at submit time and never re-read from mutable form state,
// so the amount negotiated with the backend is the amount verified later.
type DonationIntent struct {
	// Amount in rupees as entered on the form.
	Amount      int64  `json:"amount" binding:"required,min=1"`
	IsRecurring bool   `json:"is_recurring"`
	Donor       Donor  `json:"donor"`
	Message     string `json:"message"`
	CampaignID  string `json:"campaign_id"`
}

// MandateDescriptor is the recurring-debit authorization the backend attaches
// to a recurring order. Only the config builder reads it.
type MandateDescriptor struct {
	MaxAmountPaise int64  `json:"max_amount"`
	Frequency      string `json:"frequency"` // "monthly"
	ExpireBy       int64  `json:"expire_by"` // epoch seconds
}

// OrderHandle is the backend-issued order for one submission attempt. It is
// discarded when the checkout session ends, success or abandonment alike.
type OrderHandle struct {
	OrderID     string
	AmountPaise int64
	Currency    string // always "INR"
	IsRecurring bool
	Mandate     *MandateDescriptor
}

// PaymentResult is what the overlay hands back on completion. It is opaque to
// the client side; the fields are forwarded verbatim for server verification.
type PaymentResult struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
	MandateID string `json:"mandate_id,omitempty"`
}

// GatewayError is an overlay-reported failure (payment.failed and friends).
type GatewayError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e GatewayError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Description
	}
	return e.Description
}

// NavigationState is the payload handed to the confirmation view. It travels
// as navigation state, never as query string or persisted storage.
type NavigationState struct {
	Amount    int64  `json:"amount"`
	IsMonthly bool   `json:"isMonthly"`
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
}
