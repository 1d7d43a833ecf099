package proto

import (
	"encoding/json"
	"time"
)

// Request is the envelope for every client request, both the single
// WebSocket registration message and the HTTP session operations. Type
// selects the variant; Data holds the variant payload.
type Request struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Request variant tags.
const (
	TypeRegistration = "registration"
	TypeLogin        = "login"
	TypeCreateRoom   = "create_room"
	TypeGetRoom      = "get_room"
	TypeJoinRoom     = "join_room"
	TypeSendMsg      = "send_msg"
	TypeLeaveRoom    = "leave_room"
	TypeExitApp      = "exit_app"
	TypeHeartbeat    = "heartbeat"
)

// Response headers carrying resource metadata alongside the body ack.
const (
	HeaderClientUUID = "client_uuid"
	HeaderRoomUUID   = "room_uuid"
	HeaderSuccess    = "success"
)

// ChatMessage is the wire form of a chat message.
type ChatMessage struct {
	Author    string    `json:"author"`
	Contents  string    `json:"contents"`
	Timestamp time.Time `json:"timestamp"`
}

// RegistrationData is the one message a client sends after opening the
// WebSocket.
type RegistrationData struct {
	Name string `json:"name"`
}

// LoginData looks up an existing client id by display name.
type LoginData struct {
	Name string `json:"name"`
}

// CreateRoomData requests find-or-create of a room by name.
type CreateRoomData struct {
	Name string `json:"name"`
}

// GetRoomData looks up a room id by name.
type GetRoomData struct {
	Name string `json:"name"`
}

// JoinRoomData subscribes a client to a room.
type JoinRoomData struct {
	Name     string `json:"name"`
	ClientID string `json:"client_id"`
	RoomID   string `json:"room_id"`
}

// SendMsgData delivers a chat message to a room.
type SendMsgData struct {
	Message ChatMessage `json:"message"`
	RoomID  string      `json:"room_id"`
}

// LeaveRoomData unsubscribes a client from a room.
type LeaveRoomData struct {
	RoomID   string `json:"room_id"`
	ClientID string `json:"client_id"`
}

// ExitAppData removes a client from the hub entirely.
type ExitAppData struct {
	ClientID string `json:"client_id"`
}

// HeartbeatData re-arms a client's liveness flag.
type HeartbeatData struct {
	ClientID string `json:"client_id"`
}
