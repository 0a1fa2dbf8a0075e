package handler

import (
	"net/http"
	"time"

	"daansetu/internal/checkout"
	"daansetu/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	overlayWriteWait  = 10 * time.Second
	overlayPongWait   = 60 * time.Second
	overlayPingPeriod = (overlayPongWait * 9) / 10
)

var overlayUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// UpgradeCheckoutWS attaches a donation page to its session's overlay bridge.
// Query: session_id. Outbound: open/state/navigate. Inbound: the overlay
// events (completed, dismissed, failed) relayed by the page.
func UpgradeCheckoutWS(store *checkout.SessionStore, hub *ws.OverlayHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("session_id")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
			return
		}
		if store.Get(sessionID) == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown checkout session"})
			return
		}
		conn, err := overlayUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := hub.Register(sessionID)
		defer client.Close()

		go overlayWritePump(client, conn)
		overlayReadPump(hub, sessionID, conn)
	}
}

func overlayWritePump(c *ws.Client, conn *websocket.Conn) {
	ticker := time.NewTicker(overlayPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			conn.SetWriteDeadline(time.Now().Add(overlayWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(overlayWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func overlayReadPump(hub *ws.OverlayHub, sessionID string, conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(overlayPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(overlayPongWait))
		return nil
	})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		// Dispatch may block on verification; keep the pump reading so
		// ping/pong stays alive.
		go hub.Dispatch(sessionID, msg)
	}
}
