package core

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the single shared store of clients and rooms. Every operation
// takes the one mutex for its full duration, so callers always observe a
// consistent client/room pair. Nothing here blocks while the lock is held:
// outbound pushes are non-blocking enqueues.
type Registry struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*Client
	rooms   map[uuid.UUID]*Room
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[uuid.UUID]*Client),
		rooms:   make(map[uuid.UUID]*Room),
	}
}

// InsertClient registers a new client under a fresh id, marked alive.
func (r *Registry) InsertClient(name string) *Client {
	c := newClient(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.id] = c
	return c
}

// FindClientByName scans for a client with the given display name. Names are
// not unique; the first match wins.
func (r *Registry) FindClientByName(name string) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		if c.name == name {
			return id, true
		}
	}
	return uuid.Nil, false
}

// ClientName resolves a client id to its display name.
func (r *Registry) ClientName(id uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return "", false
	}
	return c.name, true
}

// GetOrCreateRoom finds a room by name or creates it. The second return
// reports whether a new room came into existence.
func (r *Registry) GetOrCreateRoom(name string) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, room := range r.rooms {
		if room.name == name {
			return id, false
		}
	}
	room := newRoom(name)
	r.rooms[room.id] = room
	return room.id, true
}

// FindRoomByName looks up a room id by display name.
func (r *Registry) FindRoomByName(name string) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, room := range r.rooms {
		if room.name == name {
			return id, true
		}
	}
	return uuid.Nil, false
}

// RoomName resolves a room id to its display name.
func (r *Registry) RoomName(id uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return "", false
	}
	return room.name, true
}

// AddMember inserts a client id into the room's membership set. Adding an
// existing member is a no-op. The client id is not validated against the
// client map; broadcast tolerates dangling members.
func (r *Registry) AddMember(roomID, clientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.addMember(clientID)
	return nil
}

// RemoveMember deletes a client id from the room's membership set. Removing
// an absent member is a no-op, not an error.
func (r *Registry) RemoveMember(roomID, clientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.removeMember(clientID)
	return nil
}

// Members returns a snapshot of a room's membership.
func (r *Registry) Members(roomID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	ids := make([]uuid.UUID, 0, len(room.members))
	for id := range room.members {
		ids = append(ids, id)
	}
	return ids, nil
}

// MarkAlive re-arms a client's liveness flag. Heartbeat handling calls this
// once per heartbeat request.
func (r *Registry) MarkAlive(clientID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}
	c.alive = true
	return nil
}

// SweepDead collects every client whose alive flag is already cleared and
// arms the survivors by clearing theirs. A client is therefore returned only
// after two consecutive sweeps with no heartbeat in between.
func (r *Registry) SweepDead() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var dead []uuid.UUID
	for id, c := range r.clients {
		if !c.alive {
			dead = append(dead, id)
			continue
		}
		c.alive = false
	}
	return dead
}

// RoomsWithMember returns the ids of every room the client belongs to.
func (r *Registry) RoomsWithMember(clientID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, room := range r.rooms {
		if room.hasMember(clientID) {
			ids = append(ids, id)
		}
	}
	return ids
}

// RemoveClient deletes a client and closes its outbound channel, ending the
// connection's forwarding loop. Returns false if the client was already
// gone. Room memberships are not touched here; stale ids are skipped by
// Broadcast and cleaned up by the caller.
func (r *Registry) RemoveClient(clientID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[clientID]
	if !ok {
		return false
	}
	delete(r.clients, clientID)
	close(c.outbound)
	return true
}

// BroadcastResult counts the per-recipient outcomes of one fan-out.
type BroadcastResult struct {
	Delivered int
	Skipped   int // membership entries with no live client
	Dropped   int // outbound queues that were full
}

// Broadcast pushes an already-serialized payload to every member of the
// room. Delivery is best-effort per recipient: dangling member ids are
// skipped silently and full queues drop the payload. The push happens under
// the registry lock, which serializes broadcasts to a room and rules out a
// send racing the channel close in RemoveClient.
func (r *Registry) Broadcast(roomID uuid.UUID, payload []byte) (BroadcastResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res BroadcastResult
	room, ok := r.rooms[roomID]
	if !ok {
		return res, ErrRoomNotFound
	}
	for clientID := range room.members {
		c, ok := r.clients[clientID]
		if !ok {
			res.Skipped++
			continue
		}
		if c.trySend(payload) {
			res.Delivered++
		} else {
			res.Dropped++
		}
	}
	return res, nil
}
