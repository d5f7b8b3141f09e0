package realtime

import "encoding/json"

type Message struct {
	Type     string          `json:"type"`
	CanvasID string          `json:"canvasId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeLayoutApplied  = "layout.applied"
	TypeWelcome        = "welcome"
	TypeError          = "error"
)

// PresencePayload is what a client shares about itself: where its cursor is
// and which layers it has selected.
type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"` // keyed by client id
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

// WelcomePayload is the first message a client receives after joining a
// canvas room. Viewers counts every connected client, the newcomer included.
type WelcomePayload struct {
	ClientID string `json:"clientId"`
	CanvasID string `json:"canvasId"`
	Viewers  int    `json:"viewers"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
