package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"daansetu/internal/checkout"
)

// Client is one connected donation page, keyed by checkout session.
type Client struct {
	SessionID string
	Send      chan []byte

	mu     sync.Mutex
	closed bool
	hub    *OverlayHub
}

// trySend queues data unless the client is already closed. Sharing c.mu with
// Close keeps the hub from sending on a closed channel.
func (c *Client) trySend(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrOverlayNotConnected
	}
	select {
	case c.Send <- data:
		return nil
	default:
		return errors.New("overlay send buffer full")
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// ErrOverlayNotConnected means no page is attached to the session, so the
// checkout overlay cannot be opened.
var ErrOverlayNotConnected = errors.New("checkout overlay not connected")

// OverlayHub bridges checkout sessions and their pages. The host flow talks
// to the overlay only through the callbacks registered at open time; the hub
// routes overlay events back to them.
type OverlayHub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	pending map[string]checkout.Callbacks
}

func NewOverlayHub() *OverlayHub {
	return &OverlayHub{
		clients: make(map[string]*Client),
		pending: make(map[string]checkout.Callbacks),
	}
}

// Register attaches a page connection to a session, replacing any stale one.
func (h *OverlayHub) Register(sessionID string) *Client {
	c := &Client{
		SessionID: sessionID,
		Send:      make(chan []byte, 16),
		hub:       h,
	}
	h.mu.Lock()
	if old, ok := h.clients[sessionID]; ok {
		old.hub = nil // avoid re-entrant unregister
		old.Close()
	}
	h.clients[sessionID] = c
	h.mu.Unlock()
	return c
}

func (h *OverlayHub) unregister(c *Client) {
	h.mu.Lock()
	if h.clients[c.SessionID] == c {
		delete(h.clients, c.SessionID)
	}
	h.mu.Unlock()
}

type outboundMessage struct {
	Type    string      `json:"type"`
	Options interface{} `json:"options,omitempty"`
	To      string      `json:"to,omitempty"`
	State   interface{} `json:"state,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (h *OverlayHub) send(sessionID string, msg outboundMessage) error {
	h.mu.RLock()
	c := h.clients[sessionID]
	h.mu.RUnlock()
	if c == nil {
		return ErrOverlayNotConnected
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.trySend(data)
}

// Open pushes the checkout options to the page and registers the flow's
// callbacks for this session. One open per order; the session guard prevents
// a second while the overlay is up.
func (h *OverlayHub) Open(sessionID string, cfg checkout.CheckoutConfig, cb checkout.Callbacks) error {
	h.mu.Lock()
	h.pending[sessionID] = cb
	h.mu.Unlock()
	if err := h.send(sessionID, outboundMessage{Type: "open", Options: cfg}); err != nil {
		h.mu.Lock()
		delete(h.pending, sessionID)
		h.mu.Unlock()
		return err
	}
	return nil
}

// Navigate pushes the confirmation handoff; the state travels in the message,
// never in a query string.
func (h *OverlayHub) Navigate(sessionID, to string, state checkout.NavigationState) {
	if err := h.send(sessionID, outboundMessage{Type: "navigate", To: to, State: state}); err != nil {
		log.Printf("[WS] session=%s navigate: %v", sessionID, err)
	}
}

// PushState streams a submission state change to the page so the form can
// render the disabled control, error banner or success panel.
func (h *OverlayHub) PushState(sessionID string, state checkout.SubmissionState, userMsg string) {
	if err := h.send(sessionID, outboundMessage{Type: "state", State: state, Message: userMsg}); err != nil {
		log.Printf("[WS] session=%s push state: %v", sessionID, err)
	}
}

// overlayEvent is what the page relays from the gateway overlay.
type overlayEvent struct {
	Type   string                 `json:"type"` // completed | dismissed | failed
	Result checkout.PaymentResult `json:"result"`
	Error  checkout.GatewayError  `json:"error"`
}

// Dispatch routes one overlay event to the callbacks registered at open time.
// The checkout session for this overlay is finished either way, so the
// callbacks are deregistered first.
func (h *OverlayHub) Dispatch(sessionID string, raw []byte) {
	var ev overlayEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Printf("[WS] session=%s bad event: %v", sessionID, err)
		return
	}
	h.mu.Lock()
	cb, ok := h.pending[sessionID]
	if ok {
		delete(h.pending, sessionID)
	}
	h.mu.Unlock()
	if !ok {
		log.Printf("[WS] session=%s event %q with no open checkout", sessionID, ev.Type)
		return
	}
	switch ev.Type {
	case "completed":
		if cb.OnComplete != nil {
			cb.OnComplete(ev.Result)
		}
	case "dismissed":
		if cb.OnDismiss != nil {
			cb.OnDismiss()
		}
	case "failed":
		if cb.OnError != nil {
			cb.OnError(ev.Error)
		}
	default:
		log.Printf("[WS] session=%s unknown event type %q", sessionID, ev.Type)
	}
}
