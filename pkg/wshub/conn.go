package wshub

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/transitlk/bus-tracker/pkg/uuid"
)

// Conn wraps a websocket connection with a write lock. gorilla/websocket
// allows at most one concurrent writer per connection.
type Conn struct {
	conn *websocket.Conn
	id   uuid.UUID
	mu   sync.Mutex
}

func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{
		conn: conn,
		id:   uuid.MustNew(),
	}
}

func (c *Conn) ID() uuid.UUID {
	return c.id
}

// Send writes msg as a JSON message.
func (c *Conn) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errors.New("connection is nil")
	}
	return c.conn.WriteJSON(msg)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
