package registry

import (
	"sort"
	"sync"

	"github.com/chat-planet/chat-service/internal/domain"
)

// Registry owns the set of chat rooms and their memberships. All state is
// process-memory resident; nothing survives a restart.
//
// Locking: r.mu guards only the name -> room map, each room has its own
// mutex for membership mutation. Mutations on distinct rooms never contend.
// Lock order is always r.mu before room.mu.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

type room struct {
	mu sync.Mutex
	// gone is set once the room has been removed from the registry, so a
	// caller holding a stale pointer does not mutate a detached room.
	gone    bool
	members map[string]string // connection id -> display name
}

func New() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

// ListRooms returns a sorted snapshot of room names. The snapshot may be
// stale as soon as it is returned.
func (r *Registry) ListRooms() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.rooms))
	for name := range r.rooms {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// CreateRoom inserts an empty room. Returns false if the name is empty or a
// room with that name already exists; with concurrent creators of the same
// name exactly one succeeds.
func (r *Registry) CreateRoom(name string) bool {
	if name == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[name]; exists {
		return false
	}
	r.rooms[name] = &room{members: make(map[string]string)}
	return true
}

// DeleteRoom removes the room regardless of membership and reports whether
// it was present.
func (r *Registry) DeleteRoom(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[name]
	if !ok {
		return false
	}
	rm.mu.Lock()
	rm.gone = true
	rm.mu.Unlock()
	delete(r.rooms, name)
	return true
}

// JoinRoom adds connID to the room. Returns false if the room does not
// exist or connID is already a member (the first display name wins).
func (r *Registry) JoinRoom(name, connID, displayName string) bool {
	if name == "" || connID == "" {
		return false
	}

	for {
		r.mu.RLock()
		rm, ok := r.rooms[name]
		r.mu.RUnlock()
		if !ok {
			return false
		}

		rm.mu.Lock()
		if rm.gone {
			// Room was deleted between lookup and lock; retry, the name
			// may point at a fresh room by now.
			rm.mu.Unlock()
			continue
		}
		if _, dup := rm.members[connID]; dup {
			rm.mu.Unlock()
			return false
		}
		rm.members[connID] = displayName
		rm.mu.Unlock()
		return true
	}
}

// LeaveRoom removes connID from the room and reports whether a removal
// occurred. Removing the last member deletes the room as part of the same
// call; a concurrent ListRooms may still observe the empty room in the
// window before cleanup.
func (r *Registry) LeaveRoom(name, connID string) bool {
	r.mu.RLock()
	rm, ok := r.rooms[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	rm.mu.Lock()
	if rm.gone {
		rm.mu.Unlock()
		return false
	}
	if _, member := rm.members[connID]; !member {
		rm.mu.Unlock()
		return false
	}
	delete(rm.members, connID)
	empty := len(rm.members) == 0
	rm.mu.Unlock()

	if empty {
		r.removeIfEmpty(name, rm)
	}
	return true
}

// removeIfEmpty deletes the room if it is still registered under name and
// still has no members. A join that slipped in keeps the room alive.
func (r *Registry) removeIfEmpty(name string, rm *room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.rooms[name]
	if !ok || cur != rm {
		return
	}
	rm.mu.Lock()
	if len(rm.members) == 0 {
		rm.gone = true
		delete(r.rooms, name)
	}
	rm.mu.Unlock()
}

// ListMembers returns a copy of the room's membership map. A missing room
// yields domain.ErrRoomNotFound; an existing room with no members yields an
// empty map.
func (r *Registry) ListMembers(name string) (map[string]string, error) {
	r.mu.RLock()
	rm, ok := r.rooms[name]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.gone {
		return nil, domain.ErrRoomNotFound
	}
	out := make(map[string]string, len(rm.members))
	for id, dn := range rm.members {
		out[id] = dn
	}
	return out, nil
}
