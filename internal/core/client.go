package core

import "github.com/google/uuid"

// outboundBuffer bounds the per-client queue. Enqueues never block; a full
// queue drops the payload for that recipient.
const outboundBuffer = 256

// Client is a registered chat participant. The registry owns the send half
// of the outbound channel; the receive half belongs exclusively to the
// connection's forwarding loop.
type Client struct {
	id       uuid.UUID
	name     string
	alive    bool
	outbound chan []byte
}

func newClient(name string) *Client {
	return &Client{
		id:       uuid.New(),
		name:     name,
		alive:    true,
		outbound: make(chan []byte, outboundBuffer),
	}
}

// ID returns the client's registry identifier.
func (c *Client) ID() uuid.UUID { return c.id }

// Name returns the client's display name.
func (c *Client) Name() string { return c.name }

// Outbound exposes the receive half of the client's queue. Messages pushed
// by the broadcast engine arrive here already serialized.
func (c *Client) Outbound() <-chan []byte { return c.outbound }

// trySend enqueues without blocking. Callers hold the registry lock, so a
// send can never race the close in removeClient.
func (c *Client) trySend(payload []byte) bool {
	select {
	case c.outbound <- payload:
		return true
	default:
		return false
	}
}
