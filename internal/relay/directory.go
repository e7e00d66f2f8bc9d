package relay

import "sync"

// Directory maps room ids to their member connection ids. Members are
// back-references; the connections themselves stay owned by the Registry.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

func NewDirectory() *Directory {
	return &Directory{
		rooms: make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to the room, creating the room if absent.
// It returns the member snapshot after the call and whether the membership
// was newly added; joining a room twice is a no-op with added = false.
func (d *Directory) Join(roomID, connID string) (members []string, added bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomID]
	if !ok {
		room = make(map[string]struct{})
		d.rooms[roomID] = room
	}

	if _, exists := room[connID]; !exists {
		room[connID] = struct{}{}
		added = true
	}

	members = make([]string, 0, len(room))
	for id := range room {
		members = append(members, id)
	}
	return members, added
}

// Leave removes the connection from the room. Idempotent. The room record
// is retained even when its member set drains empty: rooms are durable
// channels, not ephemeral ones.
func (d *Directory) Leave(roomID, connID string) (removed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	if _, exists := room[connID]; !exists {
		return false
	}
	delete(room, connID)
	return true
}

// IsMember reports whether the connection belongs to the room.
func (d *Directory) IsMember(roomID, connID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	room, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	_, exists := room[connID]
	return exists
}

// Members returns a snapshot of the room's member ids. Unknown rooms yield
// an empty slice, not an error.
func (d *Directory) Members(roomID string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	room, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	members := make([]string, 0, len(room))
	for id := range room {
		members = append(members, id)
	}
	return members
}
