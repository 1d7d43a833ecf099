package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatter-project/chatter-server/internal/core"
	"github.com/chatter-project/chatter-server/internal/proto"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// newTestEnv starts an httptest server around a fresh hub with no room log.
func newTestEnv(t *testing.T) (*httptest.Server, *core.Hub) {
	t.Helper()

	hub := core.NewHub(core.NewRegistry(), nil, testLogger())
	ts := httptest.NewServer(NewRouter(hub, testLogger()))
	t.Cleanup(ts.Close)
	return ts, hub
}

// postEnvelope wraps data in the request envelope and posts it.
func postEnvelope(t *testing.T, ts *httptest.Server, path, variant string, data any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", variant, err)
	}
	body, err := json.Marshal(proto.Request{Type: variant, Data: payload})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	resp, err := ts.Client().Post(ts.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// waitForMessage drains the outbound channel until a message with the given
// author and contents shows up.
func waitForMessage(t *testing.T, ch <-chan []byte, author, contents string) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				t.Fatalf("outbound channel closed waiting for %q", contents)
			}
			var msg proto.ChatMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				t.Fatalf("unmarshal outbound payload: %v", err)
			}
			if msg.Author == author && msg.Contents == contents {
				return
			}
		case <-deadline:
			t.Fatalf("message %q from %q not received", contents, author)
		}
	}
}
