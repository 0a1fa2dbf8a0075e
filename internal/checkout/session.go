package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// OrderNegotiator creates a payment order upstream for one submission attempt.
// It does not dedupe: two calls make two orders, which is why the session
// guard, not the negotiator, prevents duplicates.
type OrderNegotiator interface {
	CreateOrder(ctx context.Context, intent DonationIntent) (*OrderHandle, error)
}

// VerificationRequest carries the overlay's signed result plus the original
// intent fields, echoed as negotiated rather than re-read from the form.
type VerificationRequest struct {
	Result      PaymentResult
	Amount      int64
	Message     string
	IsRecurring bool
	CampaignID  string
}

type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, req VerificationRequest) error
}

// Callbacks are the only channel between the host flow and the gateway-owned
// overlay surface.
type Callbacks struct {
	OnComplete func(PaymentResult)
	OnDismiss  func()
	OnError    func(GatewayError)
}

// OverlayInvoker opens the checkout overlay exactly once per order.
type OverlayInvoker interface {
	Open(ctx context.Context, cfg CheckoutConfig, cb Callbacks) error
}

// Navigator receives the delayed success handoff to the confirmation view.
type Navigator interface {
	Navigate(to string, state NavigationState)
}

// KeySource yields the gateway's published public key, fetched fresh rather
// than cached indefinitely.
type KeySource interface {
	GatewayKey(ctx context.Context) (string, error)
}

const successRoute = "/donation/success"

// Deps wires a Session to its collaborators.
type Deps struct {
	Orders    OrderNegotiator
	Verifier  PaymentVerifier
	Overlay   OverlayInvoker
	Navigator Navigator
	Keys      KeySource
	OrgName   string
	// NavigateDelay keeps the success panel visible before navigation.
	NavigateDelay time.Duration
	// OnTransition observes every state change (form rendering, persistence).
	OnTransition func(state SubmissionState, userMessage string)
}

// Session is one donation checkout attempt lifecycle. It is the single
// mutable resource of the flow; the mutex enforces the one-writer discipline
// the UI otherwise gets by disabling the submit control.
type Session struct {
	ID string

	mu      sync.Mutex
	state   SubmissionState
	userMsg string
	intent  DonationIntent
	handle  *OrderHandle
	result  *PaymentResult

	deps Deps
}

func NewSession(id string, deps Deps) *Session {
	return &Session{ID: id, state: StateIdle, deps: deps}
}

// State returns the current submission state and the user-visible message, if
// any, for the enclosing form to render.
func (s *Session) State() (SubmissionState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.userMsg
}

// Intent returns the donation intent of the current attempt. Valid once the
// session has left StateIdle.
func (s *Session) Intent() DonationIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intent
}

// Order returns the order handle of the in-flight attempt, if any.
func (s *Session) Order() *OrderHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// LastResult returns the overlay result of the latest completed payment.
func (s *Session) LastResult() *PaymentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Submit runs the whole flow for one intent: resolve gateway mode, negotiate
// an order, build the overlay config and open the overlay. Completion,
// dismissal and gateway errors arrive through the registered callbacks.
//
// A second Submit while an attempt is in flight returns ErrSubmissionInFlight
// without touching the negotiator.
func (s *Session) Submit(ctx context.Context, intent DonationIntent) error {
	s.mu.Lock()
	if s.state == StateSucceeded {
		s.mu.Unlock()
		return fmt.Errorf("donation already completed")
	}
	if !s.state.Resubmittable() {
		s.mu.Unlock()
		return ErrSubmissionInFlight
	}
	s.intent = intent
	s.handle = nil
	s.result = nil
	s.setLocked(StateCreatingOrder, "")
	s.mu.Unlock()
	s.notify(StateCreatingOrder, "")

	key, err := s.deps.Keys.GatewayKey(ctx)
	if err != nil {
		log.Printf("[CHECKOUT] session=%s gateway key fetch: %v", s.ID, err)
		s.fail(ErrGatewayKeyUnavailable.Error())
		return ErrGatewayKeyUnavailable
	}
	mode, err := ResolveGatewayMode(key)
	if err != nil {
		s.fail(ErrGatewayNotConfigured.Error())
		return err
	}

	handle, err := s.deps.Orders.CreateOrder(ctx, intent)
	if err != nil {
		msg := "could not create donation order"
		var oce *OrderCreationError
		if errors.As(err, &oce) && oce.Message != "" {
			msg = oce.Message
		}
		log.Printf("[CHECKOUT] session=%s order creation failed: %v", s.ID, err)
		s.fail(msg)
		return err
	}
	log.Printf("[CHECKOUT] session=%s order=%s amount=%d recurring=%v mode=%s",
		s.ID, handle.OrderID, handle.AmountPaise, handle.IsRecurring, mode)

	cfg := BuildCheckoutConfig(*handle, mode, intent, key, s.deps.OrgName)

	s.mu.Lock()
	s.handle = handle
	s.setLocked(StateAwaitingPayment, "")
	s.mu.Unlock()
	s.notify(StateAwaitingPayment, "")

	cb := Callbacks{
		OnComplete: s.handleComplete,
		OnDismiss:  s.handleDismiss,
		OnError:    s.handleError,
	}
	if err := s.deps.Overlay.Open(ctx, cfg, cb); err != nil {
		log.Printf("[CHECKOUT] session=%s overlay open: %v", s.ID, err)
		s.fail(genericGatewayMessage)
		return err
	}
	return nil
}

// handleComplete forwards the signed overlay result for server verification
// and drives the success transition and delayed navigation.
func (s *Session) handleComplete(result PaymentResult) {
	s.mu.Lock()
	if s.state != StateAwaitingPayment {
		s.mu.Unlock()
		return
	}
	intent := s.intent
	s.result = &result
	s.setLocked(StateVerifying, "")
	s.mu.Unlock()
	s.notify(StateVerifying, "")

	err := s.deps.Verifier.VerifyPayment(context.Background(), VerificationRequest{
		Result:      result,
		Amount:      intent.Amount,
		Message:     intent.Message,
		IsRecurring: intent.IsRecurring,
		CampaignID:  intent.CampaignID,
	})
	if err != nil {
		msg := verifyFallbackMessage
		var ve *VerificationError
		if errors.As(err, &ve) && ve.Message != "" {
			msg = ve.Message
		}
		log.Printf("[CHECKOUT] session=%s verification failed: %v", s.ID, err)
		s.fail(msg)
		return
	}

	s.mu.Lock()
	s.setLocked(StateSucceeded, "")
	s.mu.Unlock()
	s.notify(StateSucceeded, "")
	log.Printf("[CHECKOUT] session=%s payment=%s verified", s.ID, result.PaymentID)

	nav := NavigationState{
		Amount:    intent.Amount,
		IsMonthly: intent.IsRecurring,
		PaymentID: result.PaymentID,
		OrderID:   result.OrderID,
	}
	if s.deps.Navigator != nil {
		time.AfterFunc(s.deps.NavigateDelay, func() {
			s.deps.Navigator.Navigate(successRoute, nav)
		})
	}
}

// handleDismiss is abandonment, not failure: the order is discarded, the form
// re-enables, no verification happens.
func (s *Session) handleDismiss() {
	s.mu.Lock()
	if s.state == StateSucceeded {
		s.mu.Unlock()
		return
	}
	s.handle = nil
	s.setLocked(StateIdle, "")
	s.mu.Unlock()
	s.notify(StateIdle, "")
	log.Printf("[CHECKOUT] session=%s overlay dismissed", s.ID)
}

func (s *Session) handleError(gwErr GatewayError) {
	s.mu.Lock()
	if s.state == StateSucceeded {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	log.Printf("[CHECKOUT] session=%s gateway error: %v", s.ID, gwErr)
	s.fail(gwErr.UserMessage())
}

func (s *Session) fail(userMsg string) {
	s.mu.Lock()
	s.handle = nil
	s.setLocked(StateFailed, userMsg)
	s.mu.Unlock()
	s.notify(StateFailed, userMsg)
}

func (s *Session) setLocked(state SubmissionState, userMsg string) {
	s.state = state
	s.userMsg = userMsg
}

func (s *Session) notify(state SubmissionState, userMsg string) {
	if s.deps.OnTransition != nil {
		s.deps.OnTransition(state, userMsg)
	}
}
