package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestHub() *Hub {
	return NewHub(NewRegistry(), nil, testLogger())
}

// mustMessage reads the next outbound payload and decodes it.
func mustMessage(t *testing.T, ch <-chan []byte) *ChatMessage {
	t.Helper()

	select {
	case payload, ok := <-ch:
		if !ok {
			t.Fatal("outbound channel closed")
		}
		var msg ChatMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("unmarshal outbound payload: %v", err)
		}
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatal("no outbound message received")
	}
	return nil
}

// waitForMessage skips outbound messages until one matches author and
// contents, failing after the deadline.
func waitForMessage(t *testing.T, ch <-chan []byte, author, contents string) *ChatMessage {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				t.Fatalf("outbound channel closed waiting for %q from %q", contents, author)
			}
			var msg ChatMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				t.Fatalf("unmarshal outbound payload: %v", err)
			}
			if msg.Author == author && msg.Contents == contents {
				return &msg
			}
		case <-deadline:
			t.Fatalf("message %q from %q not received", contents, author)
		}
	}
}

// expectNoMessage asserts that contents never shows up on the channel within
// a short window.
func expectNoMessage(t *testing.T, ch <-chan []byte, contents string) {
	t.Helper()

	timeout := time.After(100 * time.Millisecond)
	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				return
			}
			var msg ChatMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				t.Fatalf("unmarshal outbound payload: %v", err)
			}
			if msg.Contents == contents {
				t.Fatalf("unexpected message delivered: %+v", msg)
			}
		case <-timeout:
			return
		}
	}
}
