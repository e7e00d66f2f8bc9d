package relay

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"chatrelay/internal/models"
	"chatrelay/pkg/logger"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotMember      = errors.New("not a member of room")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Store is the slice of the persistence bridge the relay needs: resolving
// room names to durable ids and writing best-effort message copies.
type Store interface {
	GetOrCreateRoom(ctx context.Context, name string) (int, error)
	SaveMessage(ctx context.Context, userID, roomID int, content, kind string) error
}

// Relay ties the registry, directory, and gate together and implements the
// event protocol. It holds no state of its own beyond the room-name to
// storage-id cache.
type Relay struct {
	registry  *Registry
	directory *Directory
	store     Store

	mu      sync.Mutex
	roomIDs map[string]int
}

func New(gate TokenVerifier, store Store) *Relay {
	return &Relay{
		registry:  NewRegistry(gate),
		directory: NewDirectory(),
		store:     store,
		roomIDs:   make(map[string]int),
	}
}

func (rl *Relay) Registry() *Registry   { return rl.registry }
func (rl *Relay) Directory() *Directory { return rl.directory }

// Admit authenticates the session and registers it. On failure no relay
// state is created and the caller must close the transport.
func (rl *Relay) Admit(sess Session, token string) (*Conn, error) {
	return rl.registry.Admit(sess, token)
}

// HandleEvent processes one inbound event from an admitted connection.
// Per-event failures are reported back to the originating connection only;
// they never affect other connections.
func (rl *Relay) HandleEvent(conn *Conn, raw []byte) {
	var evt models.Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		rl.sendError(conn, ErrInvalidPayload, "malformed event")
		return
	}

	switch evt.Type {
	case models.EventJoinRoom:
		rl.handleJoin(conn, &evt)
	case models.EventMessage:
		rl.handleMessage(conn, &evt)
	default:
		rl.sendError(conn, ErrInvalidPayload, "unknown event type")
	}
}

// errorCode maps the relay error taxonomy to wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return models.CodeUnauthorized
	case errors.Is(err, ErrNotMember):
		return models.CodeNotMember
	default:
		return models.CodeInvalidPayload
	}
}

func (rl *Relay) handleJoin(conn *Conn, evt *models.Event) {
	roomID := strings.TrimSpace(evt.RoomID)
	if roomID == "" {
		rl.sendError(conn, ErrInvalidPayload, "roomId is required")
		return
	}

	rl.registry.AddRoom(conn.ID, roomID)
	_, added := rl.directory.Join(roomID, conn.ID)
	if _, ok := rl.registry.Lookup(conn.ID); !ok {
		// Disconnect cleanup ran between the two updates; undo the join so
		// no orphaned membership survives.
		rl.directory.Leave(roomID, conn.ID)
		return
	}
	if !added {
		// Duplicate join: membership unchanged, nothing to announce.
		return
	}

	rl.ensureRoomID(roomID)

	rl.broadcast(roomID, &models.Event{
		Type:      models.EventUserJoined,
		RoomID:    roomID,
		Username:  conn.Identity.Username,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	logger.Info("User %s joined room %s", conn.Identity.Username, roomID)
}

func (rl *Relay) handleMessage(conn *Conn, evt *models.Event) {
	roomID := strings.TrimSpace(evt.RoomID)
	if roomID == "" {
		rl.sendError(conn, ErrInvalidPayload, "roomId is required")
		return
	}

	content := strings.TrimSpace(evt.Content)
	if content == "" {
		rl.sendError(conn, ErrInvalidPayload, "content must not be empty")
		return
	}

	kind := evt.MessageType
	if kind == "" {
		kind = models.KindText
	}
	if kind != models.KindText && kind != models.KindImage {
		rl.sendError(conn, ErrInvalidPayload, "unsupported message type")
		return
	}

	if !rl.directory.IsMember(roomID, conn.ID) {
		rl.sendError(conn, ErrNotMember, "join the room before sending")
		return
	}

	rl.persistMessage(conn, roomID, content, kind)

	rl.broadcast(roomID, &models.Event{
		Type:        models.EventMessage,
		RoomID:      roomID,
		Content:     content,
		MessageType: kind,
		User:        &models.EventUser{Username: conn.Identity.Username},
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

// Disconnect removes the connection and announces its departure to every
// room it was in. Safe to call more than once and from any goroutine.
func (rl *Relay) Disconnect(connID string) {
	conn, rooms, ok := rl.registry.Remove(connID)
	if !ok {
		return
	}

	for _, roomID := range rooms {
		rl.directory.Leave(roomID, connID)
		rl.broadcast(roomID, &models.Event{
			Type:      models.EventUserLeft,
			RoomID:    roomID,
			Username:  conn.Identity.Username,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	conn.session.Close()
	logger.Info("User %s disconnected", conn.Identity.Username)
}

// broadcast fans the event out to a snapshot of the room's members. A
// delivery failure marks that member for asynchronous disconnect cleanup
// and never aborts delivery to the rest.
func (rl *Relay) broadcast(roomID string, evt *models.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		logger.Error("Error marshaling %s event: %v", evt.Type, err)
		return
	}

	for _, id := range rl.directory.Members(roomID) {
		member, ok := rl.registry.Lookup(id)
		if !ok {
			// Left between snapshot and delivery.
			continue
		}
		if err := member.session.Deliver(data); err != nil {
			logger.Error("Dropping unresponsive member %s in room %s: %v", member.Identity.Username, roomID, err)
			go rl.Disconnect(member.ID)
		}
	}
}

func (rl *Relay) sendError(conn *Conn, cause error, message string) {
	data, err := json.Marshal(&models.Event{
		Type:    models.EventError,
		Code:    errorCode(cause),
		Message: message,
	})
	if err != nil {
		logger.Error("Error marshaling error event: %v", err)
		return
	}
	if err := conn.session.Deliver(data); err != nil {
		go rl.Disconnect(conn.ID)
	}
}

// persistMessage writes a durable copy through the bridge. Durability is
// best-effort here; storage failures are logged and the broadcast proceeds.
func (rl *Relay) persistMessage(conn *Conn, roomID, content, kind string) {
	dbID, ok := rl.ensureRoomID(roomID)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rl.store.SaveMessage(ctx, conn.Identity.UserID, dbID, content, kind); err != nil {
		logger.Error("Error saving message in room %s: %v", roomID, err)
	}
}

// ensureRoomID resolves the room's durable id via the bridge, caching the
// result per room name.
func (rl *Relay) ensureRoomID(roomID string) (int, bool) {
	rl.mu.Lock()
	if id, ok := rl.roomIDs[roomID]; ok {
		rl.mu.Unlock()
		return id, true
	}
	rl.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, err := rl.store.GetOrCreateRoom(ctx, roomID)
	if err != nil {
		logger.Error("Error resolving room %s: %v", roomID, err)
		return 0, false
	}

	rl.mu.Lock()
	rl.roomIDs[roomID] = id
	rl.mu.Unlock()
	return id, true
}
