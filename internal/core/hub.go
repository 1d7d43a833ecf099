package core

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MessageLog is the append-only per-room log collaborator. Append failures
// are reported but never fail the operation that produced the message.
type MessageLog interface {
	Append(msg *ChatMessage, roomID uuid.UUID) error
}

// Hub combines the registry with the broadcast engine and the composite
// session operations shared by the protocol handlers and the sweeper.
type Hub struct {
	registry *Registry
	chatlog  MessageLog
	log      *zerolog.Logger
}

// NewHub constructs a hub around the given registry. chatlog may be nil, in
// which case messages are fanned out but not logged.
func NewHub(registry *Registry, chatlog MessageLog, logger *zerolog.Logger) *Hub {
	return &Hub{registry: registry, chatlog: chatlog, log: logger}
}

// Registry exposes the underlying store for atomic single operations.
func (h *Hub) Registry() *Registry { return h.registry }

// Register creates a new client entry for a freshly connected socket.
func (h *Hub) Register(name string) *Client {
	c := h.registry.InsertClient(name)
	h.log.Info().Str("client_id", c.ID().String()).Str("name", name).Msg("client registered")
	return c
}

// Broadcast serializes the message once and pushes it to every member of the
// room. Per-recipient failures are logged and swallowed; only an unknown
// room is an error.
func (h *Hub) Broadcast(roomID uuid.UUID, msg *ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	res, err := h.registry.Broadcast(roomID, payload)
	if err != nil {
		return err
	}
	if res.Skipped > 0 || res.Dropped > 0 {
		h.log.Warn().
			Str("room_id", roomID.String()).
			Int("delivered", res.Delivered).
			Int("skipped", res.Skipped).
			Int("dropped", res.Dropped).
			Msg("partial broadcast delivery")
	}
	return nil
}

// LogMessage hands the message to the room log. Best-effort: a failed write
// is logged and forgotten.
func (h *Hub) LogMessage(msg *ChatMessage, roomID uuid.UUID) {
	if h.chatlog == nil {
		return
	}
	if err := h.chatlog.Append(msg, roomID); err != nil {
		h.log.Error().Err(err).Str("room_id", roomID.String()).Msg("failed to log message")
	}
}

// JoinRoom adds the client to the room and announces it. The joiner receives
// its own join notice.
func (h *Hub) JoinRoom(displayName string, clientID, roomID uuid.UUID) error {
	if err := h.registry.AddMember(roomID, clientID); err != nil {
		return err
	}

	notice := NewSystemMessage(fmt.Sprintf("%s has joined the chat", displayName))
	if err := h.Broadcast(roomID, notice); err != nil {
		return err
	}
	h.log.Info().
		Str("client_id", clientID.String()).
		Str("room_id", roomID.String()).
		Msg("client joined room")
	return nil
}

// LeaveRoom removes the client from the room, then announces the departure
// to the remaining members and logs it. Removing first means the leaver does
// not see its own notice. Leaving the last room does not delete the client.
func (h *Hub) LeaveRoom(clientID, roomID uuid.UUID) error {
	name, ok := h.registry.ClientName(clientID)
	if !ok {
		return ErrClientNotFound
	}
	if err := h.registry.RemoveMember(roomID, clientID); err != nil {
		return err
	}

	notice := NewSystemMessage(fmt.Sprintf("%s has left the chat", name))
	if err := h.Broadcast(roomID, notice); err != nil {
		return err
	}
	h.LogMessage(notice, roomID)
	return nil
}

// Disconnect broadcasts a departure notice to every room the client belongs
// to, removes the memberships, and deletes the client, closing its outbound
// channel. Used by the exit operation and by presence eviction. The sequence
// is not atomic: each registry call is, but a concurrent join can still slip
// in between and leave a dangling membership for Broadcast to skip.
func (h *Hub) Disconnect(clientID uuid.UUID) error {
	name, ok := h.registry.ClientName(clientID)
	if !ok {
		return ErrClientNotFound
	}

	notice := NewSystemMessage(fmt.Sprintf("%s has left the chat", name))
	for _, roomID := range h.registry.RoomsWithMember(clientID) {
		if err := h.Broadcast(roomID, notice); err != nil {
			h.log.Warn().Err(err).Str("room_id", roomID.String()).Msg("departure broadcast failed")
		}
		if err := h.registry.RemoveMember(roomID, clientID); err != nil {
			h.log.Warn().Err(err).Str("room_id", roomID.String()).Msg("membership removal failed")
		}
		h.LogMessage(notice, roomID)
	}

	h.registry.RemoveClient(clientID)
	h.log.Info().Str("client_id", clientID.String()).Str("name", name).Msg("client disconnected")
	return nil
}
