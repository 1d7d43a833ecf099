package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatter-project/chatter-server/internal/core"
	"github.com/chatter-project/chatter-server/internal/proto"
)

// WSHandler upgrades HTTP connections and runs the connection lifecycle:
// exactly one registration message in, then outbound forwarding only.
type WSHandler struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: logger}
}

// Serve handles GET /ws.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	client, err := h.register(c.Request.Context(), conn)
	if err != nil {
		h.log.Warn().Err(err).Msg("invalid client registration request")
		conn.Close(websocket.StatusPolicyViolation, "registration required")
		return
	}

	h.forward(c.Request.Context(), conn, client)
}

// register blocks on the one inbound message of the handshake. Anything but
// a well-formed registration payload abandons the connection without
// creating a client.
func (h *WSHandler) register(ctx context.Context, conn *websocket.Conn) (*core.Client, error) {
	var env proto.Request
	if err := wsjson.Read(ctx, conn, &env); err != nil {
		return nil, fmt.Errorf("read registration: %w", err)
	}
	if env.Type != proto.TypeRegistration {
		return nil, fmt.Errorf("expected %s message, got %q", proto.TypeRegistration, env.Type)
	}

	var reg proto.RegistrationData
	if err := json.Unmarshal(env.Data, &reg); err != nil {
		return nil, fmt.Errorf("parse registration: %w", err)
	}
	if reg.Name == "" {
		return nil, errors.New("display name is required")
	}

	return h.hub.Register(reg.Name), nil
}

// forward drains the client's outbound channel onto the socket. The inbound
// stream is never consulted again after registration; CloseRead reaps
// control frames and cancels the context once the socket dies. A dead socket
// does not remove the client here -- eviction is the sweeper's job.
func (h *WSHandler) forward(ctx context.Context, conn *websocket.Conn, client *core.Client) {
	ctx = conn.CloseRead(ctx)

	for {
		select {
		case payload, ok := <-client.Outbound():
			if !ok {
				// Client evicted or exited; the registry closed the channel.
				conn.Close(websocket.StatusNormalClosure, "session ended")
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				h.log.Warn().Err(err).Str("client_id", client.ID().String()).Msg("outbound write failed")
				return
			}
		case <-ctx.Done():
			h.log.Debug().Str("client_id", client.ID().String()).Msg("ws connection closed")
			return
		}
	}
}
