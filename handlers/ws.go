package handlers

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"moves/middleware"
)

const wsWriteTimeout = 10 * time.Second

// WebSocket message envelope
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ErrorData struct {
	Error string `json:"error"`
}

// wsConn serializes writes, since the pump and the read loop both write.
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) send(msgType string, data any) error {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		raw = b
	}
	msg, err := json.Marshal(WSMessage{Type: msgType, Data: raw})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.WriteMessage(websocket.TextMessage, msg)
}

// MessagesWebSocketUpgrade validates the token passed as ?token= and checks
// that it belongs to the user whose stream is requested.
func (h *Handler) MessagesWebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID, ok := parseID(c, "user_id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Token required",
		})
	}

	claims, err := middleware.ParseToken(h.cfg.JWTSecret, tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid token",
		})
	}
	if claims.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Token does not match user",
		})
	}

	c.Locals("userID", claims.UserID)
	c.Locals("username", claims.Username)
	return c.Next()
}

// MessagesWebSocket streams new direct messages addressed to the user until
// the client disconnects.
func (h *Handler) MessagesWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		c.Close()
		return
	}

	conn := &wsConn{Conn: c}
	messages, cancel := h.svc.Hub().Subscribe(userID)
	defer cancel()

	slog.Info("Message stream opened", "user_id", userID)
	defer slog.Info("Message stream closed", "user_id", userID)

	// The conn is returned to the pool once this handler returns, so the
	// pump must have exited before then.
	done := make(chan struct{})
	pumpDone := make(chan struct{})
	defer func() {
		close(done)
		<-pumpDone
	}()

	go func() {
		defer close(pumpDone)
		for {
			select {
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if err := conn.send("message", msg); err != nil {
					slog.Debug("WebSocket write failed", "user_id", userID, "error", err)
					c.Close()
					return
				}
			}
		}
	}()

	if err := conn.send("ready", fiber.Map{"user_id": userID}); err != nil {
		return
	}

	// The client only sends pings. Any read error means it went away.
	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			conn.send("error", ErrorData{Error: "Invalid message"})
			continue
		}
		if msg.Type == "ping" {
			conn.send("pong", nil)
		}
	}
}
