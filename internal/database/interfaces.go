package database

import (
	"context"

	"chatrelay/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	// GetOrCreateUser returns the user with the given username, creating a
	// placeholder account atomically if none exists.
	GetOrCreateUser(ctx context.Context, username string) (*models.User, error)
}

type RoomRepository interface {
	CreateRoom(ctx context.Context, req *models.CreateRoomRequest, ownerID int) (*models.Room, error)
	GetRoomByID(ctx context.Context, id int) (*models.Room, error)
	GetRoomByName(ctx context.Context, name string) (*models.Room, error)
	// GetOrCreateRoom returns the id of the room with the given name,
	// creating it atomically if absent.
	GetOrCreateRoom(ctx context.Context, name string) (int, error)
	ListRooms(ctx context.Context, userID int) ([]*models.Room, error)
}

type MembershipRepository interface {
	AddMembership(ctx context.Context, userID, roomID int) error
	RemoveMembership(ctx context.Context, userID, roomID int) error
	IsMember(ctx context.Context, userID, roomID int) (bool, error)
	GetRoomMembers(ctx context.Context, roomID int) ([]*models.Member, error)
}

type MessageRepository interface {
	SaveMessage(ctx context.Context, userID, roomID int, content, kind string) error
	// ListMessages returns a room's messages ordered oldest first.
	ListMessages(ctx context.Context, roomID int) ([]*models.Message, error)
}

type Database interface {
	UserRepository
	RoomRepository
	MembershipRepository
	MessageRepository
	Close() error
}
