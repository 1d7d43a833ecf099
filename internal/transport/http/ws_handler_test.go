package http

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/chatter-project/chatter-server/internal/proto"
)

func dialWS(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(url, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func sendRegistration(t *testing.T, ctx context.Context, conn *websocket.Conn, name string) {
	t.Helper()

	payload, err := json.Marshal(proto.RegistrationData{Name: name})
	if err != nil {
		t.Fatalf("marshal registration: %v", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Request{Type: proto.TypeRegistration, Data: payload}); err != nil {
		t.Fatalf("write registration: %v", err)
	}
}

// waitForClient polls the registry until the display name appears.
// Registration happens on the server goroutine, so tests cannot observe it
// synchronously after writing the handshake message.
func waitForClient(t *testing.T, find func(string) (uuid.UUID, bool), name string) uuid.UUID {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if id, ok := find(name); ok {
			return id
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client %q never registered", name)
	return uuid.Nil
}

func TestWebSocketRegistrationAndForwarding(t *testing.T) {
	ts, hub := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts.URL)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	sendRegistration(t, ctx, conn, "alice")
	aliceID := waitForClient(t, hub.Registry().FindClientByName, "alice")

	roomID, _ := hub.Registry().GetOrCreateRoom("lobby")
	if err := hub.JoinRoom("alice", aliceID, roomID); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}

	// The join notice is forwarded onto the socket.
	var notice proto.ChatMessage
	if err := wsjson.Read(ctx, conn, &notice); err != nil {
		t.Fatalf("read join notice: %v", err)
	}
	if notice.Author != "SERVER" || notice.Contents != "alice has joined the chat" {
		t.Fatalf("unexpected notice: %+v", notice)
	}
}

func TestWebSocketRejectsInvalidRegistration(t *testing.T) {
	ts, hub := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts.URL)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// A join envelope is not a registration; the server abandons the
	// connection without creating a client.
	payload, _ := json.Marshal(proto.JoinRoomData{Name: "alice"})
	if err := wsjson.Write(ctx, conn, proto.Request{Type: proto.TypeJoinRoom, Data: payload}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, _, err := conn.Read(ctx); err == nil {
		t.Fatal("expected the server to close the connection")
	}
	if _, ok := hub.Registry().FindClientByName("alice"); ok {
		t.Fatal("client created despite invalid registration")
	}
}

func TestWebSocketClosesWhenClientRemoved(t *testing.T) {
	ts, hub := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts.URL)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	sendRegistration(t, ctx, conn, "bob")
	bobID := waitForClient(t, hub.Registry().FindClientByName, "bob")

	if err := hub.Disconnect(bobID); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	_, _, err := conn.Read(ctx)
	if err == nil {
		t.Fatal("expected the connection to close after removal")
	}
	if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure {
		t.Fatalf("close status = %v, want normal closure", status)
	}
}
