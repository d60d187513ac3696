package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
)

// WebSocketClient exchanges JSON requests and responses over one connection.
type WebSocketClient struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

// NewWebSocketClient wraps conn. A positive maxMessageSize caps inbound
// messages.
func NewWebSocketClient(conn *websocket.Conn, maxMessageSize int64) *WebSocketClient {
	if maxMessageSize > 0 {
		conn.SetReadLimit(maxMessageSize)
	}
	return &WebSocketClient{conn: conn}
}

// ReadRequest blocks for the next request. A message that is not a valid
// request returns an illegal action error and leaves the connection usable;
// any other error means the connection is gone.
func (c *WebSocketClient) ReadRequest() (Request, error) {
	_, message, err := c.conn.ReadMessage()
	if err != nil {
		return Request{}, err
	}

	var req Request
	if err := json.Unmarshal(message, &req); err != nil {
		return Request{}, gameerr.IllegalActionf("malformed request: %v", err)
	}
	if req.Cmd == "" {
		return Request{}, gameerr.IllegalAction("request has no cmd")
	}
	return req, nil
}

// Send writes resp as a single text message.
func (c *WebSocketClient) Send(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close closes the connection.
func (c *WebSocketClient) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the remote address for logging.
func (c *WebSocketClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
