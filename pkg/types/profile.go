// Package types defines the core domain types shared across the matching
// service: profiles, projects, notifications, and match results.
package types

import (
	"errors"
	"strings"
	"time"
)

// Profile represents a user profile eligible for project matching.
// Profiles are read-only to the matching subsystem; their lifecycle is
// owned by the user-facing CRUD layer.
type Profile struct {
	// ID is the unique profile identifier.
	ID string `json:"id"`

	// Email is the account email address.
	Email string `json:"email,omitempty"`

	// FullName is the display name.
	FullName string `json:"full_name"`

	// Bio is a free-text biography.
	Bio string `json:"bio,omitempty"`

	// Skills is an ordered list of skill names.
	Skills []string `json:"skills,omitempty"`

	// Experience is a free-text experience description.
	Experience string `json:"experience,omitempty"`

	// Education is a free-text education description.
	Education string `json:"education,omitempty"`

	// Technologies lists technologies the user works with.
	Technologies []string `json:"technologies,omitempty"`

	// Role is the user's primary role (e.g. "backend developer").
	Role string `json:"role"`

	// Languages lists spoken languages.
	Languages []string `json:"languages,omitempty"`

	// IsActive indicates whether the profile participates in matching.
	IsActive bool `json:"is_active"`

	// CreatedAt is the profile creation timestamp.
	CreatedAt time.Time `json:"created_at,omitempty"`

	// UpdatedAt is the last modification timestamp.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Validate checks that the profile has the minimum fields required for
// storage. Matching itself tolerates missing optional fields.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("profile ID is required")
	}
	if strings.TrimSpace(p.FullName) == "" {
		return errors.New("profile full name is required")
	}
	return nil
}
