package checkout

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// descriptionLimit is the gateway's cap on the payment description shown in
// the overlay. The UI may show a longer text; the overlay must not.
const descriptionLimit = 255

// TokenBlock is the recurring-token (mandate) section of the overlay options.
type TokenBlock struct {
	MaxAmount int64  `json:"max_amount"`
	ExpireAt  int64  `json:"expire_at"`
	Frequency string `json:"frequency"`
}

// MethodBlock enumerates every payment instrument the overlay may offer.
type MethodBlock struct {
	UPI        bool `json:"upi"`
	Card       bool `json:"card"`
	NetBanking bool `json:"netbanking"`
	Wallet     bool `json:"wallet"`
	EMI        bool `json:"emi"`
	PayLater   bool `json:"paylater"`
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact,omitempty"`
}

// CheckoutConfig is the full option set passed to the checkout overlay for
// one OrderHandle. It is built fresh per order and never persisted.
type CheckoutConfig struct {
	Key         string
	Amount      int64
	Currency    string
	Name        string
	Description string
	OrderID     string
	Prefill     Prefill
	Recurring   bool
	Token       *TokenBlock
	Method      MethodBlock
}

// BuildCheckoutConfig resolves the option set for one order.
//
// The token block is included only for a recurring order in live mode. In test
// mode the gateway cannot originate mandates, so a recurring order is
// deliberately configured as one-time; without this downgrade the overlay
// would offer no usable payment method at all.
func BuildCheckoutConfig(handle OrderHandle, mode GatewayMode, intent DonationIntent, key, orgName string) CheckoutConfig {
	cfg := CheckoutConfig{
		Key:         key,
		Amount:      handle.AmountPaise,
		Currency:    handle.Currency,
		Name:        orgName,
		Description: TruncateDescription(paymentDescription(intent, orgName)),
		OrderID:     handle.OrderID,
		Prefill: Prefill{
			Name:    intent.Donor.Name,
			Email:   intent.Donor.Email,
			Contact: intent.Donor.Phone,
		},
		Method: MethodBlock{
			UPI:        true,
			Card:       true,
			NetBanking: true,
			Wallet:     true,
			EMI:        true,
			PayLater:   true,
		},
	}
	if handle.IsRecurring && mode == ModeLive && handle.Mandate != nil {
		cfg.Recurring = true
		cfg.Token = &TokenBlock{
			MaxAmount: handle.Mandate.MaxAmountPaise,
			ExpireAt:  handle.Mandate.ExpireBy,
			Frequency: handle.Mandate.Frequency,
		}
	}
	return cfg
}

func paymentDescription(intent DonationIntent, orgName string) string {
	if intent.Message != "" {
		return intent.Message
	}
	if intent.IsRecurring {
		return "Monthly donation to " + orgName
	}
	return "Donation to " + orgName
}

// TruncateDescription caps s at 255 characters. A longer string comes back as
// exactly 255 characters with a trailing ellipsis; shorter strings pass
// through unchanged.
func TruncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= descriptionLimit {
		return s
	}
	return string(runes[:descriptionLimit-1]) + "…"
}

// MarshalJSON emits the overlay options in a pinned field order: the
// recurring/token section strictly before the method map. The overlay merges
// its own recurring-mode restrictions over whatever methods were set before
// the token block, silently dropping the enumeration, so the order here is
// load-bearing. Do not reorder.
func (c CheckoutConfig) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(name string, v interface{}) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(&buf, "%q:%s", name, data)
		return nil
	}

	fields := []struct {
		name string
		v    interface{}
	}{
		{"key", c.Key},
		{"amount", c.Amount},
		{"currency", c.Currency},
		{"name", c.Name},
		{"description", c.Description},
		{"order_id", c.OrderID},
		{"prefill", c.Prefill},
	}
	for _, f := range fields {
		if err := writeField(f.name, f.v); err != nil {
			return nil, err
		}
	}
	if c.Recurring && c.Token != nil {
		if err := writeField("recurring", "1"); err != nil {
			return nil, err
		}
		if err := writeField("token", c.Token); err != nil {
			return nil, err
		}
	}
	// method must come last; see the comment above.
	if err := writeField("method", c.Method); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
