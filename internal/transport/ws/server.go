package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Roster is the registry surface the gateway needs. Room and membership
// logic is delegated entirely; the gateway owns only session lifecycle and
// fan-out.
type Roster interface {
	JoinRoom(roomName, connID, displayName string) bool
	LeaveRoom(roomName, connID string) bool
}

type Options struct {
	PingInterval   time.Duration
	MaxMessageSize int64
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	rooms    Roster

	pingEvery time.Duration
	readLimit int64

	connMu sync.Mutex
	conns  map[*wsConn]struct{}
}

func NewServer(hub *Hub, rooms Roster, opts Options) *Server {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 15 * time.Second
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 1 << 16
	}

	return &Server{
		hub:   hub,
		rooms: rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: opts.PingInterval,
		readLimit: opts.MaxMessageSize,
		conns:     make(map[*wsConn]struct{}),
	}
}

// WS endpoint: GET /chat
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, uuid.New().String())
	s.track(c)
	slog.Debug("ws connected", "conn", c.id, "remote", conn.RemoteAddr())

	go s.writeLoop(c)
	s.readLoop(c)

	s.disconnect(c)
}

// disconnect performs the implicit leave for whatever room the connection
// was still in, then closes the socket.
func (s *Server) disconnect(c *wsConn) {
	if roomName, username := c.room(); roomName != "" {
		s.hub.Remove(roomName, c)
		if s.rooms.LeaveRoom(roomName, c.id) {
			s.hub.Broadcast(roomName, receiveEvent(&username, "has left the room"))
		}
		c.clearRoom()
	}

	s.untrack(c)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.id, "err", err)
	}
	slog.Debug("ws disconnected", "conn", c.id)
}

func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(s.readLimit)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeJoinRoom:
			var p JoinPayload
			if decode(msg.Payload, &p) == nil {
				s.handleJoin(c, p)
			}
		case TypeLeaveRoom:
			var p LeavePayload
			if decode(msg.Payload, &p) == nil {
				s.handleLeave(c, p)
			}
		case TypeSendMessage:
			var p ChatPayload
			if decode(msg.Payload, &p) == nil {
				s.handleSend(c, p)
			}
		default:
			// ignore
		}
	}
}

func (s *Server) handleJoin(c *wsConn, p JoinPayload) {
	roomName := strings.TrimSpace(p.RoomName)
	username := strings.TrimSpace(p.Username)

	// One room per connection; a second join is refused, not stacked.
	if cur, _ := c.room(); cur != "" || roomName == "" {
		s.sendFailure(c, "Failed to join room")
		return
	}
	if !s.rooms.JoinRoom(roomName, c.id, username) {
		s.sendFailure(c, "Failed to join room")
		return
	}

	c.setRoom(roomName, username)
	// Subscribe before broadcasting so the joiner sees its own join event.
	s.hub.Add(roomName, c)
	s.hub.Broadcast(roomName, receiveEvent(&username, "has joined the room"))
	slog.Info("joined room", "room", roomName, "conn", c.id, "user", username)
}

func (s *Server) handleLeave(c *wsConn, p LeavePayload) {
	roomName := strings.TrimSpace(p.RoomName)

	if roomName == "" {
		s.sendFailure(c, "Failed to leave room")
		return
	}
	if !s.rooms.LeaveRoom(roomName, c.id) {
		// The registry no longer has this membership, e.g. the room was
		// deleted while occupied. Drop the stale session state so the
		// connection is free to join again.
		if cur, _ := c.room(); cur == roomName {
			s.hub.Remove(roomName, c)
			c.clearRoom()
		}
		s.sendFailure(c, "Failed to leave room")
		return
	}

	s.hub.Remove(roomName, c)
	if cur, _ := c.room(); cur == roomName {
		c.clearRoom()
	}
	username := strings.TrimSpace(p.Username)
	s.hub.Broadcast(roomName, receiveEvent(&username, "has left the room"))
	slog.Info("left room", "room", roomName, "conn", c.id, "user", username)
}

// handleSend fans the message out to the room's subscribers. The sender's
// membership is not checked against the registry.
func (s *Server) handleSend(c *wsConn, p ChatPayload) {
	username := strings.TrimSpace(p.Username)
	s.hub.Broadcast(strings.TrimSpace(p.RoomName), receiveEvent(&username, p.Message))
}

func (s *Server) sendFailure(c *wsConn, text string) {
	if err := c.Send(receiveEvent(nil, text)); err != nil {
		slog.Debug("ws send failure event failed", "conn", c.id, "err", err)
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

func (s *Server) track(c *wsConn) {
	s.connMu.Lock()
	s.conns[c] = struct{}{}
	s.connMu.Unlock()
}

func (s *Server) untrack(c *wsConn) {
	s.connMu.Lock()
	delete(s.conns, c)
	s.connMu.Unlock()
}

// Shutdown closes every live connection; their handlers run the usual
// disconnect path (implicit leave included).
func (s *Server) Shutdown() {
	s.connMu.Lock()
	conns := make([]*wsConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.connMu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	slog.Info("ws shutdown", "closed", len(conns))
}

// --- helpers ---

func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}
