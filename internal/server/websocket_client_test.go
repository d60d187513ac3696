package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
)

// echoPair starts a websocket server whose side is handed to serverSide and
// returns the dialed client connection.
func echoPair(t *testing.T, serverSide func(conn *websocket.Conn)) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		serverSide(conn)
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketClientReadRequest(t *testing.T) {
	conn := echoPair(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"cmd":"move","direction":"north"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"direction":"north"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"cmd":"view"}`))
		time.Sleep(100 * time.Millisecond)
	})
	client := NewWebSocketClient(conn, 0)

	req, err := client.ReadRequest()
	if err != nil {
		t.Fatalf("ReadRequest() error = %v", err)
	}
	if req.Cmd != CmdMove || req.Direction != "north" {
		t.Errorf("ReadRequest() = %+v, want move north", req)
	}

	// Bad messages are rejected without dropping the connection.
	for i := 0; i < 2; i++ {
		if _, err := client.ReadRequest(); !gameerr.IsIllegalAction(err) {
			t.Errorf("bad message %d: error = %v, want illegal action", i, err)
		}
	}

	req, err = client.ReadRequest()
	if err != nil || req.Cmd != CmdView {
		t.Errorf("ReadRequest() = %+v, %v, want view", req, err)
	}
}

func TestWebSocketClientReadLimit(t *testing.T) {
	conn := echoPair(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"cmd":"new","name":"`+strings.Repeat("x", 200)+`"}`))
		time.Sleep(100 * time.Millisecond)
	})
	client := NewWebSocketClient(conn, 64)

	_, err := client.ReadRequest()
	if err == nil {
		t.Fatal("oversized message should fail")
	}
	if gameerr.IsIllegalAction(err) {
		t.Errorf("oversized message should close the connection, got %v", err)
	}
}

func TestWebSocketClientSend(t *testing.T) {
	received := make(chan []byte, 1)
	conn := echoPair(t, func(conn *websocket.Conn) {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- msg
	})
	client := NewWebSocketClient(conn, 0)

	err := client.Send(errorResponse(gameerr.IllegalAction("there is nothing to fight"), nil))
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case msg := <-received:
		var resp map[string]any
		if err := json.Unmarshal(msg, &resp); err != nil {
			t.Fatalf("response is not json: %v", err)
		}
		if resp["ok"] != false || resp["code"] != "illegal_action" || resp["error"] != "there is nothing to fight" {
			t.Errorf("response = %v", resp)
		}
		if _, ok := resp["view"]; ok {
			t.Error("response without a session should omit view")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
