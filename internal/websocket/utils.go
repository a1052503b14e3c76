package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anatomyace/anatomy-ace/internal/response"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// Conn serializes writes so the ticker and the reader loop can share one
// connection. gorilla/websocket allows a single concurrent writer.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// Wrap takes ownership of ws.
func Wrap(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// WriteError sends an error event for code over the WebSocket.
func (c *Conn) WriteError(code response.ErrCode) error {
	return c.WriteTyped(NewErrorResponse(code))
}

// ReadJSON reads and decodes one message, extending the read deadline.
// Only the reader goroutine may call it.
func (c *Conn) ReadJSON(v any) error {
	_ = c.ws.SetReadDeadline(time.Now().Add(readWait))
	return c.ws.ReadJSON(v)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}
