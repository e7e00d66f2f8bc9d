package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"chatrelay/internal/auth"
	"chatrelay/internal/models"
	"chatrelay/internal/services"
	"chatrelay/pkg/logger"
)

type RoomHandlers struct {
	roomService *services.RoomService
	authService *auth.Service
}

func NewRoomHandlers(roomService *services.RoomService, authService *auth.Service) *RoomHandlers {
	return &RoomHandlers{
		roomService: roomService,
		authService: authService,
	}
}

func (h *RoomHandlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	user, err := h.getUserFromToken(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	room, err := h.roomService.CreateRoom(r.Context(), &req, user.ID)
	if err != nil {
		logger.Error("Create room error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

func (h *RoomHandlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	user, err := h.getUserFromToken(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rooms, err := h.roomService.ListRooms(r.Context(), user.ID)
	if err != nil {
		logger.Error("List rooms error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}

func (h *RoomHandlers) GetRoomMembers(w http.ResponseWriter, r *http.Request) {
	user, err := h.getUserFromToken(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	roomID, err := h.getRoomIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	members, err := h.roomService.GetRoomMembers(r.Context(), roomID, user.ID)
	if err != nil {
		logger.Error("Get room members error: %v", err)
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

func (h *RoomHandlers) AddMember(w http.ResponseWriter, r *http.Request) {
	user, err := h.getUserFromToken(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	roomID, err := h.getRoomIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	var req models.MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.roomService.AddMember(r.Context(), roomID, user.ID, req.Username); err != nil {
		logger.Error("Add member error: %v", err)
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("user added to room"))
}

func (h *RoomHandlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if _, err := h.getUserFromToken(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	roomID, err := h.getRoomIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	var req models.MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.roomService.RemoveMember(r.Context(), roomID, req.Username); err != nil {
		logger.Error("Remove member error: %v", err)
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("user removed from room"))
}

func (h *RoomHandlers) ValidateMember(w http.ResponseWriter, r *http.Request) {
	if _, err := h.getUserFromToken(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	roomID, err := h.getRoomIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	var req models.MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	isMember, err := h.roomService.ValidateMember(r.Context(), roomID, req.Username)
	if err != nil {
		logger.Error("Validate member error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !isMember {
		http.Error(w, "user is not a member of this room", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("user is a member of this room"))
}

func (h *RoomHandlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	user, err := h.getUserFromToken(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	roomID, err := h.getRoomIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid room ID", http.StatusBadRequest)
		return
	}

	messages, err := h.roomService.ListMessages(r.Context(), roomID, user.ID)
	if err != nil {
		logger.Error("List messages error: %v", err)
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *RoomHandlers) getUserFromToken(r *http.Request) (*models.User, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, fmt.Errorf("missing token")
	}

	return h.authService.GetUserFromToken(r.Context(), token)
}

// getRoomIDFromPath resolves the room path segment: a numeric id directly,
// anything else as a room name.
func (h *RoomHandlers) getRoomIDFromPath(r *http.Request) (int, error) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 3 || parts[2] == "" {
		return 0, fmt.Errorf("invalid path")
	}

	if id, err := strconv.Atoi(parts[2]); err == nil {
		return id, nil
	}

	room, err := h.roomService.GetRoomByName(r.Context(), parts[2])
	if err != nil {
		return 0, fmt.Errorf("room not found")
	}
	return room.ID, nil
}

// bearerToken pulls the token from the Authorization header, falling back
// to the token query parameter for clients that cannot set headers.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return token
		}
	}
	return r.URL.Query().Get("token")
}
