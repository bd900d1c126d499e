package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn wraps a websocket connection with a server-assigned id and the
// room the connection is currently in (at most one).
type wsConn struct {
	conn *websocket.Conn
	id   string

	mu       sync.Mutex
	roomName string
	username string

	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn, id string) *wsConn {
	return &wsConn{
		conn:   c,
		id:     id,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) room() (roomName, username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomName, c.username
}

func (c *wsConn) setRoom(roomName, username string) {
	c.mu.Lock()
	c.roomName = roomName
	c.username = username
	c.mu.Unlock()
}

func (c *wsConn) clearRoom() {
	c.setRoom("", "")
}
