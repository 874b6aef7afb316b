package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rifqimaruf/We-are-Cooked/internal/protocol"
)

// SetupRouter wires the HTTP polling binding: the same action/snapshot
// payloads as the stream transport, carried request/response. Client
// identity travels in the payload instead of the connection.
func SetupRouter(hub *Hub) *gin.Engine {
	r := gin.Default()

	r.POST("/connect", connectHandler(hub))
	r.POST("/action", actionHandler(hub))
	r.GET("/game_state", gameStateHandler(hub))
	r.POST("/disconnect", disconnectHandler(hub))

	r.GET("/health", healthHandler(hub))
	r.GET("/status", statusHandler(hub))

	r.GET("/ws", HandleWebsocket(hub))

	return r
}

func connectHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := hub.Connect()
		snap := hub.Snapshot(clientID)
		c.JSON(http.StatusOK, gin.H{
			"client_id":  clientID,
			"status":     "connected",
			"game_state": snap,
		})
		hub.BroadcastState()
	}
}

func actionHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}
		act, clientID, err := protocol.DecodeAction(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if clientID == "" || !hub.Known(clientID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID"})
			return
		}
		hub.HandleAction(clientID, act)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

func gameStateHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.Query("client_id")
		c.JSON(http.StatusOK, hub.Snapshot(clientID))
	}
}

func disconnectHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ClientID string `json:"client_id"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.ClientID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client ID"})
			return
		}
		hub.Disconnect(body.ClientID)
		c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
	}
}

func healthHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, players, _ := hub.Status()
		c.JSON(http.StatusOK, gin.H{"status": "ok", "players": players})
	}
}

// statusHandler answers the lobby server's occupancy poll.
func statusHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		started, players, full := hub.Status()
		c.JSON(http.StatusOK, gin.H{
			"game_started": started,
			"player_count": players,
			"is_full":      full,
		})
	}
}
