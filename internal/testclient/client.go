// Package testclient drives a running dungeon server over its websocket
// protocol, one request and one reply at a time.
package testclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeonadventure/internal/game"
	"github.com/lawnchairsociety/dungeonadventure/internal/server"
)

// DefaultTimeout bounds one round trip.
const DefaultTimeout = 5 * time.Second

// Reply is a server response with the result left undecoded.
type Reply struct {
	OK     bool            `json:"ok"`
	Code   string          `json:"code"`
	Error  string          `json:"error"`
	Result json.RawMessage `json:"result"`
	View   *game.View      `json:"view"`
}

// Decode unmarshals the result into v.
func (r *Reply) Decode(v any) error {
	if !r.OK {
		return fmt.Errorf("%s: %s", r.Code, r.Error)
	}
	return json.Unmarshal(r.Result, v)
}

// TestClient represents a test client connection to the dungeon server
type TestClient struct {
	Name    string
	Timeout time.Duration

	// Difficulty is sent with every new game. Empty leaves the server's
	// configured layout.
	Difficulty string

	conn    *websocket.Conn
	mu      sync.Mutex
	history []Reply
}

// WebSocketURL turns a host:port or http(s) URL into the server's ws endpoint.
func WebSocketURL(address string) string {
	switch {
	case strings.HasPrefix(address, "ws://"), strings.HasPrefix(address, "wss://"):
		return address
	case strings.HasPrefix(address, "http://"), strings.HasPrefix(address, "https://"):
		return "ws" + strings.TrimPrefix(strings.TrimSuffix(address, "/"), "http") + "/ws"
	default:
		return "ws://" + address + "/ws"
	}
}

// NewTestClient connects to the server at address.
func NewTestClient(name string, address string) (*TestClient, error) {
	conn, resp, err := websocket.DefaultDialer.Dial(WebSocketURL(address), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect: %w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return &TestClient{Name: name, Timeout: DefaultTimeout, conn: conn}, nil
}

// Do sends one request and waits for its reply.
func (c *TestClient) Do(req server.Request) (*Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(c.Timeout)
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("send %s: %w", req.Cmd, err)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	var r Reply
	if err := c.conn.ReadJSON(&r); err != nil {
		return nil, fmt.Errorf("read reply to %s: %w", req.Cmd, err)
	}
	c.history = append(c.history, r)
	return &r, nil
}

// SendRaw writes an arbitrary text frame and waits for the reply.
func (c *TestClient) SendRaw(msg string) (*Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.Timeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return nil, err
	}
	c.conn.SetReadDeadline(time.Now().Add(c.Timeout))
	var r Reply
	if err := c.conn.ReadJSON(&r); err != nil {
		return nil, err
	}
	c.history = append(c.history, r)
	return &r, nil
}

// NewGame starts a game and returns its id and seed.
func (c *TestClient) NewGame(class, name string, seed int64) (server.SessionInfo, *Reply, error) {
	r, err := c.Do(server.Request{Cmd: server.CmdNew, Class: class, Name: name, Seed: seed, Difficulty: c.Difficulty})
	if err != nil {
		return server.SessionInfo{}, nil, err
	}
	var info server.SessionInfo
	if err := r.Decode(&info); err != nil {
		return server.SessionInfo{}, r, err
	}
	return info, r, nil
}

// Load joins a saved or running game.
func (c *TestClient) Load(id string) (*Reply, error) {
	return c.Do(server.Request{Cmd: server.CmdLoad, ID: id})
}

// Move walks one room.
func (c *TestClient) Move(direction string) (*Reply, error) {
	return c.Do(server.Request{Cmd: server.CmdMove, Direction: direction})
}

// Command sends a command that takes no arguments.
func (c *TestClient) Command(cmd string) (*Reply, error) {
	return c.Do(server.Request{Cmd: cmd})
}

// History returns every reply received so far.
func (c *TestClient) History() []Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Reply(nil), c.history...)
}

// LastReply returns the most recent reply, or nil.
func (c *TestClient) LastReply() *Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return nil
	}
	r := c.history[len(c.history)-1]
	return &r
}

// Close closes the client connection
func (c *TestClient) Close() error {
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

// Healthz fetches the server's health report.
func Healthz(address string) (map[string]any, error) {
	url := WebSocketURL(address)
	url = "http" + strings.TrimSuffix(strings.TrimPrefix(url, "ws"), "/ws") + "/healthz"

	client := &http.Client{Timeout: DefaultTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("healthz returned HTTP %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}
