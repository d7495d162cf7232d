package types

import (
	"errors"
	"strings"
	"time"
)

// Notification types emitted by the match-change notifier.
const (
	// NotificationTypeMatch is sent to a user when their profile newly
	// matches a project's requirements.
	NotificationTypeMatch = "match"

	// NotificationTypeProjectMatch is sent to a user when a new project
	// appears among their matching projects.
	NotificationTypeProjectMatch = "project_match"
)

// Notification is a user-facing notification record.
// The matching subsystem only ever creates notifications; reading and
// marking them is done by the notification API.
type Notification struct {
	// ID is the unique notification identifier.
	ID string `json:"id"`

	// UserID is the recipient profile ID.
	UserID string `json:"user_id"`

	// Title is the short notification title.
	Title string `json:"title"`

	// Message is the notification body.
	Message string `json:"message"`

	// Type tags the notification kind (e.g. "match", "project_match").
	Type string `json:"type"`

	// RelatedID optionally references the entity the notification is
	// about (e.g. the matched project's ID). Empty when not applicable.
	RelatedID string `json:"related_id,omitempty"`

	// IsRead indicates whether the user has read the notification.
	IsRead bool `json:"is_read"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"created_at"`

	// ReadAt is the time the notification was marked read, if it was.
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// Validate checks required notification fields.
func (n *Notification) Validate() error {
	if strings.TrimSpace(n.UserID) == "" {
		return errors.New("notification user ID is required")
	}
	if strings.TrimSpace(n.Title) == "" {
		return errors.New("notification title is required")
	}
	if strings.TrimSpace(n.Type) == "" {
		return errors.New("notification type is required")
	}
	return nil
}
