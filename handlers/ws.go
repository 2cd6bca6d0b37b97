package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"pettycash-api/services"
	"pettycash-api/utils"
)

const (
	sessionUserKey    = "user_id"
	sessionUpdatesKey = "updates"
)

// WSHandler is the live dashboard transport. Each connection is
// subscribed to its user's hub topic; hub messages are pumped into the
// WebSocket session until disconnect.
type WSHandler struct {
	M   *melody.Melody
	hub *services.Hub
}

func NewWSHandler(hub *services.Hub) *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-alive for cloud hosting proxies
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	h := &WSHandler{M: m, hub: hub}

	m.HandleConnect(func(s *melody.Session) {
		userID, ok := s.Get(sessionUserKey)
		if !ok {
			s.Close()
			return
		}
		uid := userID.(string)
		ch := h.hub.Subscribe(uid)
		s.Set(sessionUpdatesKey, ch)
		go pump(s, ch)
		utils.LogWebSocket("client connected", uid)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get(sessionUserKey)
		uid, _ := userID.(string)
		if ch, ok := s.Get(sessionUpdatesKey); ok {
			h.hub.Unsubscribe(uid, ch.(chan []byte))
		}
		utils.LogWebSocket("client disconnected", uid)
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.SafeError("websocket: %v", err)
	})

	return h
}

// HandleWS upgrades the request. Browsers cannot set headers on
// WebSocket upgrades, so the access token arrives as a query param.
func (h *WSHandler) HandleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	claims, err := utils.ValidateAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	err = h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		sessionUserKey: claims.UserID,
	})
	if err != nil {
		utils.SafeError("websocket upgrade failed: %v", err)
	}
}

// pump forwards hub deliveries to the session. It exits when the hub
// closes the channel on unsubscribe.
func pump(s *melody.Session, ch chan []byte) {
	for msg := range ch {
		if s.IsClosed() {
			continue
		}
		if err := s.Write(msg); err != nil {
			continue
		}
	}
}
