package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProjectStatus is the lifecycle status of a project.
type ProjectStatus string

// Valid project statuses.
const (
	StatusActive    ProjectStatus = "active"
	StatusCompleted ProjectStatus = "completed"
	StatusOnHold    ProjectStatus = "on_hold"
)

// ValidProjectStatuses lists all accepted project status values.
var ValidProjectStatuses = []ProjectStatus{StatusActive, StatusCompleted, StatusOnHold}

// IsValid reports whether s is one of the accepted status values.
func (s ProjectStatus) IsValid() bool {
	for _, v := range ValidProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Project represents a project looking for team members.
// Projects are read-only to the matching subsystem.
type Project struct {
	// ID is the unique project identifier.
	ID string `json:"id"`

	// Title is the project title.
	Title string `json:"title"`

	// Description is a free-text project description.
	Description string `json:"description,omitempty"`

	// Technologies lists required technologies.
	Technologies []string `json:"technologies,omitempty"`

	// Roles lists required team roles.
	Roles []string `json:"roles,omitempty"`

	// TeamLeadID is the profile ID of the project owner.
	TeamLeadID string `json:"team_lead_id,omitempty"`

	// Status is the project lifecycle status.
	Status ProjectStatus `json:"status"`

	// CreatedAt is the project creation timestamp.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Validate checks that the project has the minimum fields required for
// storage and a recognized status.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("project ID is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("project title is required")
	}
	if p.Status != "" && !p.Status.IsValid() {
		return fmt.Errorf("invalid project status: %q", p.Status)
	}
	return nil
}
