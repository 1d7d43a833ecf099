package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatter-project/chatter-server/internal/core"
	"github.com/chatter-project/chatter-server/internal/proto"
)

// SessionHandlers exposes the session protocol over HTTP. Each handler is a
// thin translation from a request variant to registry/broadcast calls.
type SessionHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewSessionHandlers creates the session handlers instance.
func NewSessionHandlers(hub *core.Hub, logger *zerolog.Logger) *SessionHandlers {
	return &SessionHandlers{hub: hub, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a plain acknowledgment body.
type StatusResponse struct {
	Status string `json:"status"`
}

// LoginResponse carries the client id resolved by name.
type LoginResponse struct {
	ClientID string `json:"client_id"`
}

// RoomResponse carries a room id plus whether this request created it.
type RoomResponse struct {
	RoomID  string `json:"room_id"`
	Created bool   `json:"created,omitempty"`
}

// JoinResponse acknowledges a membership change.
type JoinResponse struct {
	Success bool `json:"success"`
}

// bind decodes the request envelope, checks the variant tag, and unmarshals
// the payload. Any mismatch is a malformed request answered with 400.
func (h *SessionHandlers) bind(c *gin.Context, want string, out any) bool {
	var env proto.Request
	if err := c.ShouldBindJSON(&env); err != nil {
		h.log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("unparseable request envelope")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("could not parse JSON: %v", err)})
		return false
	}
	if env.Type != want {
		h.log.Debug().Str("got", env.Type).Str("want", want).Msg("unexpected request variant")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid %s request received", want)})
		return false
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		h.log.Debug().Err(err).Str("variant", want).Msg("unparseable request payload")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("could not parse JSON: %v", err)})
		return false
	}
	return true
}

// parseUUID rejects malformed ids with 400 before they reach the registry.
func (h *SessionHandlers) parseUUID(c *gin.Context, field, value string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		h.log.Debug().Err(err).Str("field", field).Msg("malformed uuid")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("malformed %s", field)})
		return uuid.Nil, false
	}
	return id, true
}

// HealthCheck reports liveness.
// GET /health_check
func (h *SessionHandlers) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "I am chatter-server and I am alive!")
}

// Login resolves a display name to an existing client id. An unregistered
// name is answered with 404; the caller must register over the WebSocket.
// POST /login
func (h *SessionHandlers) Login(c *gin.Context) {
	var data proto.LoginData
	if !h.bind(c, proto.TypeLogin, &data) {
		return
	}

	clientID, ok := h.hub.Registry().FindClientByName(data.Name)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "client not found"})
		return
	}

	c.Header(proto.HeaderClientUUID, clientID.String())
	c.JSON(http.StatusOK, LoginResponse{ClientID: clientID.String()})
}

// CreateRoom finds or creates a room by name. Idempotent by name.
// POST /create_room
func (h *SessionHandlers) CreateRoom(c *gin.Context) {
	var data proto.CreateRoomData
	if !h.bind(c, proto.TypeCreateRoom, &data) {
		return
	}

	roomID, created := h.hub.Registry().GetOrCreateRoom(data.Name)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.log.Info().Str("room_id", roomID.String()).Str("name", data.Name).Msg("room created")
	}

	c.Header(proto.HeaderRoomUUID, roomID.String())
	c.JSON(status, RoomResponse{RoomID: roomID.String(), Created: created})
}

// GetRoom resolves a room name to its id.
// POST /get_room
func (h *SessionHandlers) GetRoom(c *gin.Context) {
	var data proto.GetRoomData
	if !h.bind(c, proto.TypeGetRoom, &data) {
		return
	}

	roomID, ok := h.hub.Registry().FindRoomByName(data.Name)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	c.Header(proto.HeaderRoomUUID, roomID.String())
	c.JSON(http.StatusOK, RoomResponse{RoomID: roomID.String()})
}

// JoinRoom subscribes a client to a room and announces the arrival.
// POST /join_room
func (h *SessionHandlers) JoinRoom(c *gin.Context) {
	var data proto.JoinRoomData
	if !h.bind(c, proto.TypeJoinRoom, &data) {
		return
	}
	clientID, ok := h.parseUUID(c, "client_id", data.ClientID)
	if !ok {
		return
	}
	roomID, ok := h.parseUUID(c, "room_id", data.RoomID)
	if !ok {
		return
	}

	if err := h.hub.JoinRoom(data.Name, clientID, roomID); err != nil {
		c.Header(proto.HeaderSuccess, "false")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.Header(proto.HeaderSuccess, "true")
	c.JSON(http.StatusOK, JoinResponse{Success: true})
}

// SendMsg fans a chat message out to the room and hands it to the room log.
// A logging failure never fails the send.
// POST /send_msg
func (h *SessionHandlers) SendMsg(c *gin.Context) {
	var data proto.SendMsgData
	if !h.bind(c, proto.TypeSendMsg, &data) {
		return
	}
	roomID, ok := h.parseUUID(c, "room_id", data.RoomID)
	if !ok {
		return
	}

	msg := chatMessageFromWire(data.Message)
	h.hub.LogMessage(msg, roomID)
	if err := h.hub.Broadcast(roomID, msg); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// LeaveRoom unsubscribes a client from a room and announces the departure to
// the remaining members. Removing an absent member succeeds.
// POST /leave_room
func (h *SessionHandlers) LeaveRoom(c *gin.Context) {
	var data proto.LeaveRoomData
	if !h.bind(c, proto.TypeLeaveRoom, &data) {
		return
	}
	clientID, ok := h.parseUUID(c, "client_id", data.ClientID)
	if !ok {
		return
	}
	roomID, ok := h.parseUUID(c, "room_id", data.RoomID)
	if !ok {
		return
	}

	if err := h.hub.LeaveRoom(clientID, roomID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// ExitApp removes the client from all rooms and deletes it. Idempotent: an
// already-gone client is still acknowledged.
// POST /exit_app
func (h *SessionHandlers) ExitApp(c *gin.Context) {
	var data proto.ExitAppData
	if !h.bind(c, proto.TypeExitApp, &data) {
		return
	}
	clientID, ok := h.parseUUID(c, "client_id", data.ClientID)
	if !ok {
		return
	}

	if err := h.hub.Disconnect(clientID); err != nil && !errors.Is(err, core.ErrClientNotFound) {
		h.log.Error().Err(err).Str("client_id", data.ClientID).Msg("exit failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Heartbeat re-arms the client's liveness flag. A client that was already
// evicted gets 404 and must register again.
// POST /heartbeat
func (h *SessionHandlers) Heartbeat(c *gin.Context) {
	var data proto.HeartbeatData
	if !h.bind(c, proto.TypeHeartbeat, &data) {
		return
	}
	clientID, ok := h.parseUUID(c, "client_id", data.ClientID)
	if !ok {
		return
	}

	if err := h.hub.Registry().MarkAlive(clientID); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "client not found"})
		return
	}

	h.log.Debug().Str("client_id", data.ClientID).Msg("heartbeat received")
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}
