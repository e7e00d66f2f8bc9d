package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectory_JoinCreatesRoom(t *testing.T) {
	d := NewDirectory()

	members, added := d.Join("general", "c1")
	assert.True(t, added)
	assert.ElementsMatch(t, []string{"c1"}, members)
	assert.True(t, d.IsMember("general", "c1"))
}

func TestDirectory_JoinIsIdempotent(t *testing.T) {
	d := NewDirectory()

	d.Join("general", "c1")
	members, added := d.Join("general", "c1")

	assert.False(t, added, "second join must not add a duplicate membership")
	assert.Len(t, members, 1)
}

func TestDirectory_LeaveIsIdempotent(t *testing.T) {
	d := NewDirectory()

	d.Join("general", "c1")
	assert.True(t, d.Leave("general", "c1"))
	assert.False(t, d.Leave("general", "c1"))
	assert.False(t, d.Leave("nope", "c1"))
}

func TestDirectory_EmptyRoomIsRetained(t *testing.T) {
	d := NewDirectory()

	d.Join("general", "c1")
	d.Leave("general", "c1")

	// Rooms are durable channels; the record survives draining empty.
	assert.Empty(t, d.Members("general"))
	members, added := d.Join("general", "c2")
	assert.True(t, added)
	assert.ElementsMatch(t, []string{"c2"}, members)
}

func TestDirectory_MembersOfUnknownRoom(t *testing.T) {
	d := NewDirectory()
	assert.Empty(t, d.Members("missing"))
}

func TestDirectory_MembersIsASnapshot(t *testing.T) {
	d := NewDirectory()
	d.Join("general", "c1")
	d.Join("general", "c2")

	snapshot := d.Members("general")
	d.Leave("general", "c1")

	assert.Len(t, snapshot, 2, "snapshot must not observe later mutations")
	assert.Len(t, d.Members("general"), 1)
}
