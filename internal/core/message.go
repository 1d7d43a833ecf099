package core

import (
	"fmt"
	"time"
)

// ServerSignature is the author of system notices (joins, departures).
const ServerSignature = "SERVER"

// ChatMessage is the domain model for a chat message. It is immutable once
// constructed and is serialized verbatim onto the wire.
type ChatMessage struct {
	Author    string    `json:"author"`
	Contents  string    `json:"contents"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage constructs a message stamped with the current UTC time.
func NewChatMessage(author, contents string) *ChatMessage {
	return &ChatMessage{
		Author:    author,
		Contents:  contents,
		Timestamp: time.Now().UTC(),
	}
}

// NewSystemMessage constructs a server-authored notice.
func NewSystemMessage(contents string) *ChatMessage {
	return NewChatMessage(ServerSignature, contents)
}

// String renders the message in the room-log line format.
func (m *ChatMessage) String() string {
	return fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format(time.RFC3339), m.Author, m.Contents)
}
