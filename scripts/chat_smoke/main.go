// Command chat_smoke drives one full session against a running server:
// register over WebSocket, login, create and join a room, send a message,
// read it back from the socket, then exit cleanly.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/chatter-project/chatter-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("chat_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	httpAddr := flag.String("http", "http://localhost:8080", "server base URL")
	wsAddr := flag.String("ws", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "smoke-user", "display name")
	room := flag.String("room", "smoke-room", "room to create and join")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *wsAddr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.TypeRegistration, proto.RegistrationData{Name: *user}); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	clientID, err := post(ctx, *httpAddr+"/login", proto.TypeLogin, proto.LoginData{Name: *user}, proto.HeaderClientUUID)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	log.Printf("logged in as %s (%s)", *user, clientID)

	roomID, err := post(ctx, *httpAddr+"/create_room", proto.TypeCreateRoom, proto.CreateRoomData{Name: *room}, proto.HeaderRoomUUID)
	if err != nil {
		return fmt.Errorf("create_room: %w", err)
	}

	if _, err := post(ctx, *httpAddr+"/join_room", proto.TypeJoinRoom, proto.JoinRoomData{
		Name:     *user,
		ClientID: clientID,
		RoomID:   roomID,
	}, proto.HeaderSuccess); err != nil {
		return fmt.Errorf("join_room: %w", err)
	}

	// Join notice arrives first.
	var notice proto.ChatMessage
	if err := wsjson.Read(ctx, conn, &notice); err != nil {
		return fmt.Errorf("read join notice: %w", err)
	}
	log.Printf("<- %s: %s", notice.Author, notice.Contents)

	if _, err := post(ctx, *httpAddr+"/send_msg", proto.TypeSendMsg, proto.SendMsgData{
		Message: proto.ChatMessage{Author: *user, Contents: "smoke test message", Timestamp: time.Now().UTC()},
		RoomID:  roomID,
	}, ""); err != nil {
		return fmt.Errorf("send_msg: %w", err)
	}

	var echoed proto.ChatMessage
	if err := wsjson.Read(ctx, conn, &echoed); err != nil {
		return fmt.Errorf("read message: %w", err)
	}
	log.Printf("<- %s: %s", echoed.Author, echoed.Contents)

	if _, err := post(ctx, *httpAddr+"/heartbeat", proto.TypeHeartbeat, proto.HeartbeatData{ClientID: clientID}, ""); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	if _, err := post(ctx, *httpAddr+"/exit_app", proto.TypeExitApp, proto.ExitAppData{ClientID: clientID}, ""); err != nil {
		return fmt.Errorf("exit_app: %w", err)
	}

	log.Print("smoke test passed")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, variant string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return wsjson.Write(ctx, conn, proto.Request{Type: variant, Data: payload})
}

// post sends one envelope request and returns the named response header, if
// requested.
func post(ctx context.Context, url, variant string, data any, header string) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(proto.Request{Type: variant, Data: payload})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%s: unexpected status %d", url, resp.StatusCode)
	}
	if header == "" {
		return "", nil
	}
	value := resp.Header.Get(header)
	if value == "" {
		return "", fmt.Errorf("%s: missing %s header", url, header)
	}
	return value, nil
}
