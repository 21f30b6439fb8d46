package handlers

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"

	"moves/config"
	"moves/database"
	"moves/metrics"
	"moves/middleware"
	"moves/models"
	"moves/services"
)

// startWSServer serves the app on a real loopback listener, since websocket
// upgrades can't go through app.Test.
func startWSServer(t *testing.T) (string, *services.Service) {
	t.Helper()

	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")
	cfg.JWTSecret = "test-secret"

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	m := metrics.New()
	svc := services.New(db, services.WithMetrics(m))
	app := NewApp(New(svc, cfg), m)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	return ln.Addr().String(), svc
}

func dialMessages(t *testing.T, addr string, user *models.User) *fastws.Conn {
	t.Helper()

	token, err := middleware.GenerateToken("test-secret", user.ID, user.Username, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	url := "ws://" + addr + "/messages/ws/" + itoa(user.ID) + "?token=" + token
	conn, _, err := fastws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return conn
}

func readEnvelope(t *testing.T, conn *fastws.Conn) WSMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return msg
}

func TestMessagesWebSocketStream(t *testing.T) {
	addr, svc := startWSServer(t)

	bob, err := svc.Register(context.Background(), models.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	conn := dialMessages(t, addr, bob)
	defer conn.Close()

	if msg := readEnvelope(t, conn); msg.Type != "ready" {
		t.Fatalf("first envelope = %q, want ready", msg.Type)
	}

	svc.Hub().Publish(models.Message{ID: 7, SenderID: 99, RecipientID: bob.ID, Content: "hi"})
	msg := readEnvelope(t, conn)
	if msg.Type != "message" {
		t.Fatalf("envelope = %q, want message", msg.Type)
	}
	var got models.Message
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if got.ID != 7 || got.Content != "hi" {
		t.Errorf("message = %+v", got)
	}

	if err := conn.WriteJSON(WSMessage{Type: "ping"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if msg := readEnvelope(t, conn); msg.Type != "pong" {
		t.Errorf("envelope = %q, want pong", msg.Type)
	}
}

// Closing the client while messages are still being pushed must not leave
// the writer running against a released connection.
func TestMessagesWebSocketCloseDuringBurst(t *testing.T) {
	addr, svc := startWSServer(t)

	bob, err := svc.Register(context.Background(), models.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for round := 0; round < 50; round++ {
		conn := dialMessages(t, addr, bob)
		if msg := readEnvelope(t, conn); msg.Type != "ready" {
			t.Fatalf("round %d: first envelope = %q, want ready", round, msg.Type)
		}
		for i := 0; i < 16; i++ {
			svc.Hub().Publish(models.Message{ID: uint(i + 1), RecipientID: bob.ID, Content: "burst"})
		}
		conn.Close()
	}

	// every handler has returned once its subscription is gone
	deadline := time.Now().Add(5 * time.Second)
	for svc.Hub().Subscribers(bob.ID) > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("%d streams still open", svc.Hub().Subscribers(bob.ID))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
