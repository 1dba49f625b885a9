package handler

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/travellinq/backend/internal/dto"
	"github.com/travellinq/backend/internal/logger"
	"github.com/travellinq/backend/internal/middleware"
	"github.com/travellinq/backend/internal/realtime"
	"go.uber.org/zap"
)

const pingInterval = 30 * time.Second

// inbound is a message sent by the client.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type WebSocketHandler struct {
	hub *realtime.Hub
}

func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleWebSocket serves one session. Clients send
// {"type":"subscribe","payload":{"post_id":...}} to follow a post's comments;
// per-user notifications and messages arrive without subscribing.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	client := realtime.NewClient(userID)
	h.hub.Register(client)

	go h.writePump(c, client)
	h.readPump(c, client)
}

func (h *WebSocketHandler) readPump(conn *websocket.Conn, client *realtime.Client) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Debug("websocket read failed", zap.String("user_id", client.UserID.String()), zap.Error(err))
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "subscribe", "unsubscribe":
			var p struct {
				PostID uuid.UUID `json:"post_id"`
			}
			if err := json.Unmarshal(msg.Payload, &p); err != nil || p.PostID == uuid.Nil {
				continue
			}
			if msg.Type == "subscribe" {
				h.hub.Subscribe(client, p.PostID)
			} else {
				h.hub.Unsubscribe(client, p.PostID)
			}
		case "ping":
			h.hub.Reply(client, realtime.Event{Type: realtime.EventPong})
		}
	}
}

func (h *WebSocketHandler) writePump(conn *websocket.Conn, client *realtime.Client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			if !ok {
				// Hub dropped the session.
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WebSocketUpgrade authenticates the upgrade request from the token query
// parameter, since browsers cannot set headers on websocket requests.
func (h *WebSocketHandler) WebSocketUpgrade(authMiddleware *middleware.AuthMiddleware) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Query("token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("UNAUTHORIZED", "Token is required"))
		}

		claims, err := authMiddleware.GetJWTService().ValidateAccessToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("INVALID_TOKEN", "Invalid token"))
		}
		userID, err := claims.UserID()
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("INVALID_TOKEN", "Invalid token"))
		}
		if authMiddleware.IsDeactivated(userID) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse("ACCOUNT_DISABLED", "Account has been deactivated"))
		}

		c.Locals("userID", userID)
		c.Locals("userRole", claims.Role)
		return c.Next()
	}
}
