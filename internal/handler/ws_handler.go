package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/quocanhngo/kickoff/internal/apperr"
	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/quocanhngo/kickoff/internal/service"
	"github.com/quocanhngo/kickoff/internal/ws"
	log "github.com/sirupsen/logrus"
)

const wsActionTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, validate origin
	},
}

// WSHandler handles WebSocket connections
type WSHandler struct {
	hub           *ws.Hub
	auth          *service.AuthService
	notifications *service.NotificationService
}

func NewWSHandler(hub *ws.Hub, auth *service.AuthService, notifications *service.NotificationService) *WSHandler {
	return &WSHandler{
		hub:           hub,
		auth:          auth,
		notifications: notifications,
	}
}

// HandleWebSocket upgrades HTTP to WebSocket and manages the connection
// Client connects with: ws://host/ws?token=<jwt_token>
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	// WebSocket can't use Authorization header
	identity, err := h.auth.Authenticate(c.Request.Context(), c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.hub, conn, identity.UserID)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h.handleWSMessage)
}

// handleWSMessage processes incoming WebSocket messages from clients
func (h *WSHandler) handleWSMessage(client *ws.Client, event ws.ClientEvent) {
	switch event.Type {
	case model.WSEventMarkRead:
		h.handleMarkRead(client, event)
	default:
		log.WithFields(log.Fields{
			"user_id": client.UserID,
			"type":    event.Type,
		}).Debug("Unknown WebSocket event type")
	}
}

// handleMarkRead marks one notification read. The new unread count is pushed
// by the notification service.
func (h *WSHandler) handleMarkRead(client *ws.Client, event ws.ClientEvent) {
	var payload struct {
		NotificationID uuid.UUID `json:"notification_id"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil || payload.NotificationID == uuid.Nil {
		client.Reply(model.WSEvent{
			Type:    "error",
			Payload: model.ErrorResponse{Error: "validation_error", Message: "notification_id is required"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), wsActionTimeout)
	defer cancel()
	if err := h.notifications.MarkRead(ctx, payload.NotificationID, client.UserID); err != nil {
		log.WithField("user_id", client.UserID).WithError(err).Debug("mark_read failed")
		client.Reply(model.WSEvent{
			Type:    "error",
			Payload: model.ErrorResponse{Error: string(apperr.KindOf(err)), Message: apperr.MessageOf(err)},
		})
	}
}
