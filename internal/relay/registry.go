package relay

import (
	"fmt"
	"sync"

	"chatrelay/internal/models"

	"github.com/google/uuid"
)

// Session is the transport side of a connection. Deliver must not block;
// an error means the member is unresponsive and will be disconnected.
type Session interface {
	Deliver(data []byte) error
	Close()
}

// TokenVerifier converts a bearer token into a verified identity.
// Implemented by the auth service.
type TokenVerifier interface {
	VerifyToken(token string) (*models.Identity, error)
}

// Conn is one live authenticated connection. The Registry owns it; the
// rooms set is guarded by the Registry mutex.
type Conn struct {
	ID       string
	Identity models.Identity
	session  Session
	rooms    map[string]struct{}
}

// Registry owns the set of currently connected sessions and which rooms
// each belongs to.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*Conn
	gate  TokenVerifier
}

func NewRegistry(gate TokenVerifier) *Registry {
	return &Registry{
		conns: make(map[string]*Conn),
		gate:  gate,
	}
}

// Admit verifies the token and, on success, allocates a connection record
// with a fresh id and no room memberships. A failed verification leaves no
// trace in the registry.
func (r *Registry) Admit(sess Session, token string) (*Conn, error) {
	identity, err := r.gate.VerifyToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	conn := &Conn{
		ID:       uuid.NewString(),
		Identity: *identity,
		session:  sess,
		rooms:    make(map[string]struct{}),
	}

	r.mu.Lock()
	r.conns[conn.ID] = conn
	r.mu.Unlock()

	return conn, nil
}

// Lookup returns the live connection for id, if any.
func (r *Registry) Lookup(id string) (*Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// Remove deletes the connection record and returns it along with the rooms
// it belonged to, for leave notifications. Removing an unknown id is a
// no-op and reports ok = false, so disconnect cleanup is idempotent.
func (r *Registry) Remove(id string) (conn *Conn, rooms []string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok = r.conns[id]
	if !ok {
		return nil, nil, false
	}

	delete(r.conns, id)
	rooms = make([]string, 0, len(conn.rooms))
	for roomID := range conn.rooms {
		rooms = append(rooms, roomID)
	}
	conn.rooms = make(map[string]struct{})
	return conn, rooms, true
}

// AddRoom records that the connection joined roomID. Idempotent.
func (r *Registry) AddRoom(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn, ok := r.conns[connID]; ok {
		conn.rooms[roomID] = struct{}{}
	}
}

// DropRoom records that the connection left roomID. Idempotent.
func (r *Registry) DropRoom(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conn, ok := r.conns[connID]; ok {
		delete(conn.rooms, roomID)
	}
}

// Rooms returns the rooms the connection currently belongs to.
func (r *Registry) Rooms(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return nil
	}
	rooms := make([]string, 0, len(conn.rooms))
	for roomID := range conn.rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}

// Count reports the number of live connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
