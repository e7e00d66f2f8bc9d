package services

import (
	"context"
	"fmt"

	"chatrelay/internal/database"
	"chatrelay/internal/models"
)

type RoomService struct {
	db database.Database
}

func NewRoomService(db database.Database) *RoomService {
	return &RoomService{db: db}
}

func (s *RoomService) CreateRoom(ctx context.Context, req *models.CreateRoomRequest, ownerID int) (*models.Room, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("room name is required")
	}

	return s.db.CreateRoom(ctx, req, ownerID)
}

func (s *RoomService) ListRooms(ctx context.Context, userID int) ([]*models.Room, error) {
	return s.db.ListRooms(ctx, userID)
}

func (s *RoomService) GetRoom(ctx context.Context, roomID int) (*models.Room, error) {
	return s.db.GetRoomByID(ctx, roomID)
}

// GetRoomByName looks a room up by its name, the identifier the relay
// keys rooms by.
func (s *RoomService) GetRoomByName(ctx context.Context, name string) (*models.Room, error) {
	return s.db.GetRoomByName(ctx, name)
}

// AddMember adds a user to a room by username, creating a placeholder
// account for unknown usernames.
func (s *RoomService) AddMember(ctx context.Context, roomID, inviterID int, username string) error {
	room, err := s.db.GetRoomByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("room not found")
	}

	if !room.IsPublic && room.OwnerID != inviterID {
		isMember, err := s.db.IsMember(ctx, inviterID, roomID)
		if err != nil || !isMember {
			return fmt.Errorf("forbidden - not authorized to add members to this room")
		}
	}

	user, err := s.db.GetOrCreateUser(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to resolve user: %w", err)
	}

	return s.db.AddMembership(ctx, user.ID, roomID)
}

// RemoveMember removes a user from a room by username.
func (s *RoomService) RemoveMember(ctx context.Context, roomID int, username string) error {
	user, err := s.db.GetOrCreateUser(ctx, username)
	if err != nil {
		return fmt.Errorf("user not found")
	}

	isMember, err := s.db.IsMember(ctx, user.ID, roomID)
	if err != nil {
		return fmt.Errorf("database error")
	}
	if !isMember {
		return fmt.Errorf("not a member of this room")
	}

	return s.db.RemoveMembership(ctx, user.ID, roomID)
}

// ValidateMember reports whether the named user belongs to the room.
func (s *RoomService) ValidateMember(ctx context.Context, roomID int, username string) (bool, error) {
	user, err := s.db.GetOrCreateUser(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to resolve user: %w", err)
	}

	return s.db.IsMember(ctx, user.ID, roomID)
}

func (s *RoomService) GetRoomMembers(ctx context.Context, roomID, userID int) ([]*models.Member, error) {
	room, err := s.db.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("room not found")
	}

	if !room.IsPublic {
		isMember, err := s.db.IsMember(ctx, userID, roomID)
		if err != nil || !isMember {
			return nil, fmt.Errorf("forbidden")
		}
	}

	return s.db.GetRoomMembers(ctx, roomID)
}

// ListMessages returns a room's history, oldest first.
func (s *RoomService) ListMessages(ctx context.Context, roomID, userID int) ([]*models.Message, error) {
	canAccess, err := s.CanUserAccessRoom(ctx, userID, roomID)
	if err != nil {
		return nil, fmt.Errorf("room not found")
	}
	if !canAccess {
		return nil, fmt.Errorf("forbidden")
	}

	return s.db.ListMessages(ctx, roomID)
}

func (s *RoomService) CanUserAccessRoom(ctx context.Context, userID, roomID int) (bool, error) {
	room, err := s.db.GetRoomByID(ctx, roomID)
	if err != nil {
		return false, err
	}

	if room.IsPublic {
		return true, nil
	}

	return s.db.IsMember(ctx, userID, roomID)
}
