package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daansetu/internal/checkout"
)

func drain(t *testing.T, c *Client) map[string]json.RawMessage {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	default:
		t.Fatal("no message queued for client")
		return nil
	}
}

func TestOpenDeliversOptions(t *testing.T) {
	hub := NewOverlayHub()
	c := hub.Register("sess-1")

	cfg := checkout.CheckoutConfig{Key: "rzp_test_abc", Amount: 50000, Currency: "INR", Name: "DaanSetu Foundation"}
	require.NoError(t, hub.Open("sess-1", cfg, checkout.Callbacks{}))

	msg := drain(t, c)
	assert.JSONEq(t, `"open"`, string(msg["type"]))

	var opts map[string]interface{}
	require.NoError(t, json.Unmarshal(msg["options"], &opts))
	assert.Equal(t, "rzp_test_abc", opts["key"])
	assert.Equal(t, float64(50000), opts["amount"])
}

func TestOpenWithoutClient(t *testing.T) {
	hub := NewOverlayHub()
	err := hub.Open("sess-1", checkout.CheckoutConfig{}, checkout.Callbacks{})
	assert.ErrorIs(t, err, ErrOverlayNotConnected)

	// a dangling open must not leave callbacks behind
	hub.Register("sess-1")
	hub.Dispatch("sess-1", []byte(`{"type":"completed","result":{"razorpay_payment_id":"pay_1"}}`))
}

func TestDispatchCompleted(t *testing.T) {
	hub := NewOverlayHub()
	hub.Register("sess-1")

	var got *checkout.PaymentResult
	cb := checkout.Callbacks{OnComplete: func(res checkout.PaymentResult) { got = &res }}
	require.NoError(t, hub.Open("sess-1", checkout.CheckoutConfig{}, cb))

	hub.Dispatch("sess-1", []byte(`{
		"type": "completed",
		"result": {"razorpay_payment_id": "pay_9", "razorpay_order_id": "order_9", "razorpay_signature": "sig"}
	}`))

	require.NotNil(t, got)
	assert.Equal(t, "pay_9", got.PaymentID)
	assert.Equal(t, "order_9", got.OrderID)
}

func TestDispatchDismissedAndFailed(t *testing.T) {
	hub := NewOverlayHub()
	hub.Register("sess-1")

	dismissed := false
	require.NoError(t, hub.Open("sess-1", checkout.CheckoutConfig{}, checkout.Callbacks{
		OnDismiss: func() { dismissed = true },
	}))
	hub.Dispatch("sess-1", []byte(`{"type":"dismissed"}`))
	assert.True(t, dismissed)

	var gotErr *checkout.GatewayError
	require.NoError(t, hub.Open("sess-1", checkout.CheckoutConfig{}, checkout.Callbacks{
		OnError: func(e checkout.GatewayError) { gotErr = &e },
	}))
	hub.Dispatch("sess-1", []byte(`{
		"type": "failed",
		"error": {"code": "BAD_REQUEST_ERROR", "description": "No appropriate payment method found."}
	}`))
	require.NotNil(t, gotErr)
	assert.Equal(t, "BAD_REQUEST_ERROR", gotErr.Code)
}

func TestDispatchIsOneShot(t *testing.T) {
	hub := NewOverlayHub()
	hub.Register("sess-1")

	calls := 0
	require.NoError(t, hub.Open("sess-1", checkout.CheckoutConfig{}, checkout.Callbacks{
		OnComplete: func(checkout.PaymentResult) { calls++ },
	}))

	event := []byte(`{"type":"completed","result":{"razorpay_payment_id":"pay_9"}}`)
	hub.Dispatch("sess-1", event)
	hub.Dispatch("sess-1", event)
	assert.Equal(t, 1, calls, "a replayed overlay event must not re-run the callbacks")
}

func TestRegisterReplacesStaleClient(t *testing.T) {
	hub := NewOverlayHub()
	old := hub.Register("sess-1")
	fresh := hub.Register("sess-1")

	// the stale client's channel is closed, the fresh one receives
	_, open := <-old.Send
	assert.False(t, open)

	require.NoError(t, hub.Open("sess-1", checkout.CheckoutConfig{}, checkout.Callbacks{}))
	msg := drain(t, fresh)
	assert.JSONEq(t, `"open"`, string(msg["type"]))
}

func TestPushStateDuringClose(t *testing.T) {
	hub := NewOverlayHub()
	for i := 0; i < 500; i++ {
		c := hub.Register("sess-1")
		done := make(chan struct{})
		go func() {
			for j := 0; j < 20; j++ {
				hub.PushState("sess-1", checkout.StateVerifying, "")
			}
			close(done)
		}()
		c.Close()
		<-done
	}
}

func TestSendToClosedClient(t *testing.T) {
	hub := NewOverlayHub()
	c := hub.Register("sess-1")
	c.Close()

	// a closed client must refuse the send, never panic
	err := c.trySend([]byte(`{}`))
	assert.ErrorIs(t, err, ErrOverlayNotConnected)
}

func TestNavigateCarriesState(t *testing.T) {
	hub := NewOverlayHub()
	c := hub.Register("sess-1")

	hub.Navigate("sess-1", "/donation/success", checkout.NavigationState{
		Amount:    500,
		IsMonthly: true,
		PaymentID: "pay_9",
		OrderID:   "order_9",
	})

	msg := drain(t, c)
	assert.JSONEq(t, `"navigate"`, string(msg["type"]))
	assert.JSONEq(t, `"/donation/success"`, string(msg["to"]))

	var state checkout.NavigationState
	require.NoError(t, json.Unmarshal(msg["state"], &state))
	assert.Equal(t, int64(500), state.Amount)
	assert.True(t, state.IsMonthly)
}
