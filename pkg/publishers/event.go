package publishers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/drawing-uploader/internal/domain"
)

// Event types emitted by the uploader.
const (
	EventLogin          = "session.login"
	EventRegister       = "session.register"
	EventLogout         = "session.logout"
	EventUploadComplete = "upload.completed"
)

// Event represents the payload published downstream. It never carries the bearer token.
type Event struct {
	ID         string               `json:"id"`
	Type       string               `json:"type"`
	Server     string               `json:"server"`
	Username   string               `json:"username,omitempty"`
	Upload     *domain.UploadedFile `json:"upload,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// NewEvent constructs an Event for the given type, server and signed-in user.
func NewEvent(typ, server string, user json.RawMessage) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Server:     server,
		Username:   usernameOf(user),
		OccurredAt: time.Now().UTC(),
	}
}

// NewUploadEvent constructs an upload.completed event.
func NewUploadEvent(server string, user json.RawMessage, file domain.UploadedFile) Event {
	evt := NewEvent(EventUploadComplete, server, user)
	evt.Upload = &file
	return evt
}

func usernameOf(user json.RawMessage) string {
	if !domain.HasUser(user) {
		return ""
	}
	var profile struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(user, &profile); err != nil {
		return ""
	}
	return profile.Username
}
