package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/rifqimaruf/We-are-Cooked/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn carries snapshots as websocket text messages; the browser gets its
// framing from the websocket layer instead of the length prefix.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// HandleWebsocket upgrades the request and runs the same connect/dispatch/
// disconnect lifecycle as the TCP handler.
func HandleWebsocket(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("ws upgrade error:", err)
			return
		}

		wc := &wsConn{conn: conn}
		clientID := hub.Connect()
		hub.Broadcaster().Register(wc, clientID)

		defer func() {
			hub.Broadcaster().Unregister(wc)
			hub.Disconnect(clientID)
		}()

		if err := hub.Broadcaster().SendTo(wc, hub.Snapshot(clientID)); err != nil {
			log.Printf("initial snapshot to %s failed: %v", clientID, err)
			return
		}
		hub.BroadcastState()

		limiter := rate.NewLimiter(rate.Limit(actionRate), actionBurst)

		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}

			act, _, err := protocol.DecodeAction(msg)
			if err != nil {
				log.Printf("malformed action from %s: %v", clientID, err)
				return
			}
			if !limiter.Allow() {
				continue
			}
			hub.HandleAction(clientID, act)
		}
	}
}
