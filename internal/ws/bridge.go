package ws

import (
	"context"

	"daansetu/internal/checkout"
)

// SessionBridge binds one checkout session to the hub, satisfying the
// engine's OverlayInvoker and Navigator without the engine knowing about
// sockets.
type SessionBridge struct {
	hub       *OverlayHub
	sessionID string
}

func NewSessionBridge(hub *OverlayHub, sessionID string) *SessionBridge {
	return &SessionBridge{hub: hub, sessionID: sessionID}
}

func (b *SessionBridge) Open(_ context.Context, cfg checkout.CheckoutConfig, cb checkout.Callbacks) error {
	return b.hub.Open(b.sessionID, cfg, cb)
}

func (b *SessionBridge) Navigate(to string, state checkout.NavigationState) {
	b.hub.Navigate(b.sessionID, to, state)
}
