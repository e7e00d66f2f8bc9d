package relay

import (
	"errors"
	"testing"

	"chatrelay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGate maps tokens to identities; unknown tokens are rejected.
type fakeGate struct {
	identities map[string]models.Identity
}

func (g *fakeGate) VerifyToken(token string) (*models.Identity, error) {
	identity, ok := g.identities[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &identity, nil
}

func newFakeGate() *fakeGate {
	return &fakeGate{identities: map[string]models.Identity{
		"alice-token": {UserID: 1, Username: "alice"},
		"bob-token":   {UserID: 2, Username: "bob"},
		"carol-token": {UserID: 3, Username: "carol"},
	}}
}

func TestRegistry_AdmitValidToken(t *testing.T) {
	r := NewRegistry(newFakeGate())

	conn, err := r.Admit(&fakeSession{}, "alice-token")
	require.NoError(t, err)
	require.NotEmpty(t, conn.ID)
	assert.Equal(t, "alice", conn.Identity.Username)
	assert.Equal(t, 1, conn.Identity.UserID)

	got, ok := r.Lookup(conn.ID)
	require.True(t, ok)
	assert.Same(t, conn, got)
}

func TestRegistry_AdmitRejectsBadToken(t *testing.T) {
	r := NewRegistry(newFakeGate())

	conn, err := r.Admit(&fakeSession{}, "forged")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, conn)
	assert.Equal(t, 0, r.Count(), "a failed admit must leave no record")
}

func TestRegistry_AdmitAllocatesFreshIDs(t *testing.T) {
	r := NewRegistry(newFakeGate())

	a, err := r.Admit(&fakeSession{}, "alice-token")
	require.NoError(t, err)
	b, err := r.Admit(&fakeSession{}, "alice-token")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID, "two sessions for one user are distinct connections")
	assert.Equal(t, 2, r.Count())
}

func TestRegistry_RemoveReportsVacatedRooms(t *testing.T) {
	r := NewRegistry(newFakeGate())
	conn, err := r.Admit(&fakeSession{}, "alice-token")
	require.NoError(t, err)

	r.AddRoom(conn.ID, "general")
	r.AddRoom(conn.ID, "random")

	removed, rooms, ok := r.Remove(conn.ID)
	require.True(t, ok)
	assert.Same(t, conn, removed)
	assert.ElementsMatch(t, []string{"general", "random"}, rooms)

	_, found := r.Lookup(conn.ID)
	assert.False(t, found)
	assert.Empty(t, r.Rooms(conn.ID))
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	r := NewRegistry(newFakeGate())
	conn, err := r.Admit(&fakeSession{}, "alice-token")
	require.NoError(t, err)

	_, _, ok := r.Remove(conn.ID)
	require.True(t, ok)

	_, rooms, ok := r.Remove(conn.ID)
	assert.False(t, ok)
	assert.Nil(t, rooms)
}

func TestRegistry_RoomTrackingIsIdempotent(t *testing.T) {
	r := NewRegistry(newFakeGate())
	conn, err := r.Admit(&fakeSession{}, "alice-token")
	require.NoError(t, err)

	r.AddRoom(conn.ID, "general")
	r.AddRoom(conn.ID, "general")
	assert.Equal(t, []string{"general"}, r.Rooms(conn.ID))

	r.DropRoom(conn.ID, "general")
	r.DropRoom(conn.ID, "general")
	assert.Empty(t, r.Rooms(conn.ID))

	// Tracking calls for unknown connections are no-ops.
	r.AddRoom("ghost", "general")
	assert.Empty(t, r.Rooms("ghost"))
}
