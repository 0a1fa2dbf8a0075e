package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNegotiator struct {
	calls  int32
	handle *OrderHandle
	err    error
	// block, when set, holds CreateOrder until released
	block chan struct{}
}

func (f *fakeNegotiator) CreateOrder(ctx context.Context, intent DonationIntent) (*OrderHandle, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	h := *f.handle
	return &h, nil
}

type fakeVerifier struct {
	mu    sync.Mutex
	calls int
	got   VerificationRequest
	err   error
}

func (f *fakeVerifier) VerifyPayment(ctx context.Context, req VerificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.got = req
	return f.err
}

func (f *fakeVerifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeOverlay struct {
	mu     sync.Mutex
	opened int
	cfg    CheckoutConfig
	cb     Callbacks
	err    error
}

func (f *fakeOverlay) Open(ctx context.Context, cfg CheckoutConfig, cb Callbacks) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.opened++
	f.cfg = cfg
	f.cb = cb
	return nil
}

type fakeNavigator struct {
	mu    sync.Mutex
	to    string
	state NavigationState
	done  chan struct{}
}

func newFakeNavigator() *fakeNavigator {
	return &fakeNavigator{done: make(chan struct{})}
}

func (f *fakeNavigator) Navigate(to string, state NavigationState) {
	f.mu.Lock()
	f.to = to
	f.state = state
	f.mu.Unlock()
	close(f.done)
}

type fakeKeys struct {
	key string
	err error
}

func (f *fakeKeys) GatewayKey(ctx context.Context) (string, error) {
	return f.key, f.err
}

type fixture struct {
	neg  *fakeNegotiator
	ver  *fakeVerifier
	ov   *fakeOverlay
	nav  *fakeNavigator
	keys *fakeKeys
	sess *Session
}

func newFixture(t *testing.T, key string, handle OrderHandle) *fixture {
	t.Helper()
	f := &fixture{
		neg:  &fakeNegotiator{handle: &handle},
		ver:  &fakeVerifier{},
		ov:   &fakeOverlay{},
		nav:  newFakeNavigator(),
		keys: &fakeKeys{key: key},
	}
	f.sess = NewSession("sess-1", Deps{
		Orders:        f.neg,
		Verifier:      f.ver,
		Overlay:       f.ov,
		Navigator:     f.nav,
		Keys:          f.keys,
		OrgName:       "DaanSetu Foundation",
		NavigateDelay: 5 * time.Millisecond,
	})
	return f
}

func oneTimeIntent(amount int64) DonationIntent {
	return DonationIntent{
		Amount: amount,
		Donor:  Donor{Name: "Asha Rao", Email: "asha@example.org", Guest: true},
	}
}

func TestOneTimeLiveFlow(t *testing.T) {
	f := newFixture(t, "rzp_live_k", testHandle(false, nil))

	require.NoError(t, f.sess.Submit(context.Background(), oneTimeIntent(500)))

	state, _ := f.sess.State()
	assert.Equal(t, StateAwaitingPayment, state)
	assert.Equal(t, 1, f.ov.opened)
	assert.Nil(t, f.ov.cfg.Token)

	f.ov.cb.OnComplete(PaymentResult{
		PaymentID: "pay_9",
		OrderID:   "order_123",
		Signature: "sig",
	})

	state, msg := f.sess.State()
	assert.Equal(t, StateSucceeded, state)
	assert.Empty(t, msg)
	assert.Equal(t, 1, f.ver.callCount())
	// the verified amount is the one negotiated, never re-read
	assert.Equal(t, int64(500), f.ver.got.Amount)

	select {
	case <-f.nav.done:
	case <-time.After(time.Second):
		t.Fatal("navigation never fired")
	}
	assert.Equal(t, "/donation/success", f.nav.to)
	assert.Equal(t, NavigationState{
		Amount:    500,
		IsMonthly: false,
		PaymentID: "pay_9",
		OrderID:   "order_123",
	}, f.nav.state)
}

func TestRecurringTestModeOpensOneTime(t *testing.T) {
	f := newFixture(t, "rzp_test_k", testHandle(true, testMandate()))

	intent := oneTimeIntent(100)
	intent.IsRecurring = true
	require.NoError(t, f.sess.Submit(context.Background(), intent))

	assert.Nil(t, f.ov.cfg.Token, "sandbox cannot originate mandates")
	assert.False(t, f.ov.cfg.Recurring)
}

func TestOrderCreationFailureSurfacedVerbatim(t *testing.T) {
	f := newFixture(t, "rzp_live_k", testHandle(false, nil))
	f.neg.err = &OrderCreationError{Message: "Gateway unavailable"}

	err := f.sess.Submit(context.Background(), oneTimeIntent(500))
	require.Error(t, err)

	state, msg := f.sess.State()
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, "Gateway unavailable", msg)
	assert.True(t, state.Resubmittable())
	assert.Equal(t, 0, f.ov.opened)
}

func TestDoubleSubmitMakesOneOrder(t *testing.T) {
	f := newFixture(t, "rzp_live_k", testHandle(false, nil))
	f.neg.block = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- f.sess.Submit(context.Background(), oneTimeIntent(500)) }()

	// wait for the first submit to take the guard
	require.Eventually(t, func() bool {
		state, _ := f.sess.State()
		return state == StateCreatingOrder
	}, time.Second, time.Millisecond)

	err := f.sess.Submit(context.Background(), oneTimeIntent(500))
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	close(f.neg.block)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.neg.calls))
}

func TestDismissResetsToIdleWithoutVerify(t *testing.T) {
	f := newFixture(t, "rzp_live_k", testHandle(false, nil))
	require.NoError(t, f.sess.Submit(context.Background(), oneTimeIntent(500)))

	f.ov.cb.OnDismiss()

	state, msg := f.sess.State()
	assert.Equal(t, StateIdle, state)
	assert.Empty(t, msg)
	assert.True(t, state.Resubmittable())
	assert.Equal(t, 0, f.ver.callCount())

	// the form is genuinely resubmittable
	require.NoError(t, f.sess.Submit(context.Background(), oneTimeIntent(500)))
	assert.Equal(t, 2, f.ov.opened)
}

func TestGatewayMethodUnavailableGetsGuidance(t *testing.T) {
	f := newFixture(t, "rzp_live_k", testHandle(false, nil))
	require.NoError(t, f.sess.Submit(context.Background(), oneTimeIntent(500)))

	f.ov.cb.OnError(GatewayError{
		Code:        "BAD_REQUEST_ERROR",
		Description: "No appropriate payment method found for the given order",
	})

	state, msg := f.sess.State()
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, methodUnavailableMessage, msg)
}

func TestGatewayGenericErrorGetsGenericMessage(t *testing.T) {
	f := newFixture(t, "rzp_live_k", testHandle(false, nil))
	require.NoError(t, f.sess.Submit(context.Background(), oneTimeIntent(500)))

	f.ov.cb.OnError(GatewayError{Code: "SERVER_ERROR", Description: "internal error"})

	_, msg := f.sess.State()
	assert.Equal(t, genericGatewayMessage, msg)
}

func TestVerificationFailureLeavesFormResubmittable(t *testing.T) {
	f := newFixture(t, "rzp_live_k", testHandle(false, nil))
	f.ver.err = &VerificationError{Message: "signature mismatch"}
	require.NoError(t, f.sess.Submit(context.Background(), oneTimeIntent(500)))

	f.ov.cb.OnComplete(PaymentResult{PaymentID: "pay_9", OrderID: "order_123", Signature: "bad"})

	state, msg := f.sess.State()
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, "signature mismatch", msg)
	assert.True(t, state.Resubmittable())
}

func TestEmptyGatewayKeyBlocksSubmission(t *testing.T) {
	f := newFixture(t, "", testHandle(false, nil))

	err := f.sess.Submit(context.Background(), oneTimeIntent(500))
	require.ErrorIs(t, err, ErrGatewayNotConfigured)

	_, msg := f.sess.State()
	assert.Equal(t, "payment gateway not configured", msg)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.neg.calls))
}

func TestKeyFetchFailureIsDistinctFromMissingKey(t *testing.T) {
	f := newFixture(t, "", testHandle(false, nil))
	f.keys.err = context.DeadlineExceeded

	err := f.sess.Submit(context.Background(), oneTimeIntent(500))
	require.ErrorIs(t, err, ErrGatewayKeyUnavailable)

	_, msg := f.sess.State()
	assert.Equal(t, "gateway key unavailable", msg)
}

func TestSucceededIsTerminal(t *testing.T) {
	f := newFixture(t, "rzp_live_k", testHandle(false, nil))
	require.NoError(t, f.sess.Submit(context.Background(), oneTimeIntent(500)))
	f.ov.cb.OnComplete(PaymentResult{PaymentID: "pay_9", OrderID: "order_123", Signature: "sig"})

	err := f.sess.Submit(context.Background(), oneTimeIntent(200))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSubmissionInFlight)

	// late overlay events are ignored after success
	f.ov.cb.OnDismiss()
	state, _ := f.sess.State()
	assert.Equal(t, StateSucceeded, state)
}

func TestStaleCompleteIgnoredAfterDismiss(t *testing.T) {
	f := newFixture(t, "rzp_live_k", testHandle(false, nil))
	require.NoError(t, f.sess.Submit(context.Background(), oneTimeIntent(500)))

	f.ov.cb.OnDismiss()
	f.ov.cb.OnComplete(PaymentResult{PaymentID: "pay_9", OrderID: "order_123", Signature: "sig"})

	state, _ := f.sess.State()
	assert.Equal(t, StateIdle, state)
	assert.Equal(t, 0, f.ver.callCount())
}

func TestTransitionsObserved(t *testing.T) {
	var mu sync.Mutex
	var seen []SubmissionState
	f := newFixture(t, "rzp_live_k", testHandle(false, nil))
	f.sess.deps.OnTransition = func(state SubmissionState, _ string) {
		mu.Lock()
		seen = append(seen, state)
		mu.Unlock()
	}

	require.NoError(t, f.sess.Submit(context.Background(), oneTimeIntent(500)))
	f.ov.cb.OnComplete(PaymentResult{PaymentID: "pay_9", OrderID: "order_123", Signature: "sig"})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []SubmissionState{
		StateCreatingOrder,
		StateAwaitingPayment,
		StateVerifying,
		StateSucceeded,
	}, seen)
}
