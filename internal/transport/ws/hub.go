package ws

import (
	"sync"
)

type Conn interface {
	Send(msg Message) error
	Close() error
	ID() string
}

// Hub maps room names to the connections subscribed to that room's
// broadcast channel. Membership logic lives in the registry; the hub only
// knows who is listening where.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]struct{} // room name -> set of connections
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[Conn]struct{})}
}

func (h *Hub) Add(roomName string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[roomName]
	if !ok {
		rs = make(map[Conn]struct{})
		h.rooms[roomName] = rs
	}
	rs[c] = struct{}{}
}

func (h *Hub) Remove(roomName string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rs, ok := h.rooms[roomName]; ok {
		delete(rs, c)
		if len(rs) == 0 {
			delete(h.rooms, roomName)
		}
	}
}

// Broadcast delivers msg to every subscriber of the room, sequentially and
// under the read lock, so events published for one room arrive in publish
// order.
func (h *Hub) Broadcast(roomName string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[roomName]; ok {
		for c := range rs {
			_ = c.Send(msg) // best-effort
		}
	}
}
