package core

import "github.com/google/uuid"

// Room groups clients subscribed to the same channel. Membership is a set of
// client ids, not client pointers, so a stale id is tolerated until broadcast
// skips it. Rooms are never reclaimed once created.
type Room struct {
	id      uuid.UUID
	name    string
	members map[uuid.UUID]struct{}
}

func newRoom(name string) *Room {
	return &Room{
		id:      uuid.New(),
		name:    name,
		members: make(map[uuid.UUID]struct{}),
	}
}

// ID returns the room's registry identifier.
func (r *Room) ID() uuid.UUID { return r.id }

// Name returns the room's display name.
func (r *Room) Name() string { return r.name }

func (r *Room) addMember(clientID uuid.UUID) {
	r.members[clientID] = struct{}{}
}

func (r *Room) removeMember(clientID uuid.UUID) {
	delete(r.members, clientID)
}

func (r *Room) hasMember(clientID uuid.UUID) bool {
	_, ok := r.members[clientID]
	return ok
}
