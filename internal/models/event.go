package models

// EventType discriminates the JSON envelopes exchanged over a relay
// connection.
type EventType string

const (
	EventJoinRoom   EventType = "joinRoom"
	EventMessage    EventType = "message"
	EventUserJoined EventType = "userJoined"
	EventUserLeft   EventType = "userLeft"
	EventError      EventType = "error"
)

// Error codes carried by error events.
const (
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotMember      = "NOT_MEMBER"
	CodeInvalidPayload = "INVALID_PAYLOAD"
)

// Message kinds accepted in message events.
const (
	KindText  = "text"
	KindImage = "image"
)

type EventUser struct {
	Username string `json:"username"`
}

// Event is the wire envelope for every client/server exchange. Fields are
// populated per event type; unused ones are omitted from the JSON.
type Event struct {
	Type        EventType  `json:"type"`
	RoomID      string     `json:"roomId,omitempty"`
	Content     string     `json:"content,omitempty"`
	MessageType string     `json:"messageType,omitempty"`
	User        *EventUser `json:"user,omitempty"`
	Username    string     `json:"username,omitempty"`
	Timestamp   string     `json:"timestamp,omitempty"`
	Code        string     `json:"code,omitempty"`
	Message     string     `json:"message,omitempty"`
}
