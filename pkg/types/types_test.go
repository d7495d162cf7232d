package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{
			name:    "valid profile",
			profile: Profile{ID: "u1", FullName: "Alice Chen", Role: "backend developer"},
			wantErr: false,
		},
		{
			name:    "missing ID",
			profile: Profile{FullName: "Alice Chen"},
			wantErr: true,
		},
		{
			name:    "missing full name",
			profile: Profile{ID: "u1"},
			wantErr: true,
		},
		{
			name:    "whitespace-only name",
			profile: Profile{ID: "u1", FullName: "   "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProjectValidate(t *testing.T) {
	valid := Project{ID: "p1", Title: "Analytics Platform", Status: StatusActive}
	require.NoError(t, valid.Validate())

	t.Run("missing title", func(t *testing.T) {
		p := Project{ID: "p1", Status: StatusActive}
		assert.Error(t, p.Validate())
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		p := Project{ID: "p1", Title: "X", Status: ProjectStatus("archived")}
		assert.Error(t, p.Validate())
	})

	t.Run("empty status tolerated", func(t *testing.T) {
		p := Project{ID: "p1", Title: "X"}
		assert.NoError(t, p.Validate())
	})
}

func TestProjectStatusIsValid(t *testing.T) {
	for _, s := range ValidProjectStatuses {
		assert.True(t, s.IsValid(), "expected %q to be valid", s)
	}
	assert.False(t, ProjectStatus("deleted").IsValid())
	assert.False(t, ProjectStatus("").IsValid())
}

func TestNotificationValidate(t *testing.T) {
	n := Notification{UserID: "u1", Title: "New match", Message: "m", Type: NotificationTypeMatch}
	require.NoError(t, n.Validate())

	t.Run("missing recipient", func(t *testing.T) {
		bad := Notification{Title: "New match", Type: NotificationTypeMatch}
		assert.Error(t, bad.Validate())
	})

	t.Run("missing type", func(t *testing.T) {
		bad := Notification{UserID: "u1", Title: "New match"}
		assert.Error(t, bad.Validate())
	})
}
