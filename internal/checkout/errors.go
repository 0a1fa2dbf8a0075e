package checkout

import (
	"errors"
	"strings"
)

// ErrGatewayNotConfigured blocks submission when no gateway key is published.
var ErrGatewayNotConfigured = errors.New("payment gateway not configured")

// ErrGatewayKeyUnavailable is the transport-level sibling of
// ErrGatewayNotConfigured: the key endpoint exists but could not be reached.
var ErrGatewayKeyUnavailable = errors.New("gateway key unavailable")

// ErrSubmissionInFlight is returned when Submit is called while an earlier
// attempt is still between order creation and verification.
var ErrSubmissionInFlight = errors.New("a donation is already being processed")

// OrderCreationError carries the backend's rejection message, which is
// surfaced to the donor verbatim when present.
type OrderCreationError struct {
	Message string
	Err     error
}

func (e *OrderCreationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "could not create donation order"
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

// VerificationError means the backend could not verify a completed payment.
// The charge itself is a backend reconciliation concern; the donor just sees
// the message and may retry.
type VerificationError struct {
	Message string
	Err     error
}

func (e *VerificationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return verifyFallbackMessage
}

func (e *VerificationError) Unwrap() error { return e.Err }

const (
	genericGatewayMessage = "Payment could not be completed. Please try again."

	methodUnavailableMessage = "No payment method is available for this donation. " +
		"This usually means UPI or the selected method is disabled on the gateway account, " +
		"merchant KYC is still pending, the page is not served over HTTPS, " +
		"or this domain is not whitelisted with the gateway. Please contact the site administrator."

	verifyFallbackMessage = "We could not confirm your payment. " +
		"If any amount was deducted it will be reconciled automatically."
)

// UserMessage maps an overlay error to what the donor should read. The
// "no appropriate payment method" case gets specific guidance instead of the
// generic retry line, since retrying cannot fix a disabled method.
func (e GatewayError) UserMessage() string {
	if strings.Contains(strings.ToLower(e.Description), "no appropriate payment method") {
		return methodUnavailableMessage
	}
	return genericGatewayMessage
}
