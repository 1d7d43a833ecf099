package http

import (
	"github.com/chatter-project/chatter-server/internal/core"
	"github.com/chatter-project/chatter-server/internal/proto"
)

// chatMessageFromWire converts the wire payload into the domain message.
// The message is forwarded verbatim; the server never rewrites author,
// contents, or timestamp of a client message.
func chatMessageFromWire(msg proto.ChatMessage) *core.ChatMessage {
	return &core.ChatMessage{
		Author:    msg.Author,
		Contents:  msg.Contents,
		Timestamp: msg.Timestamp,
	}
}
