package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectfinder/matching/internal/storage"
	"github.com/projectfinder/matching/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "matching.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreProfileRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	profile := &types.Profile{
		ID:           "u1",
		Email:        "alice@example.com",
		FullName:     "Alice Chen",
		Bio:          "Backend engineer",
		Skills:       []string{"Go", "SQL"},
		Experience:   "5 years",
		Education:    "BSc",
		Technologies: []string{"PostgreSQL"},
		Role:         "backend developer",
		Languages:    []string{"English"},
		IsActive:     true,
	}
	require.NoError(t, store.StoreProfile(ctx, profile))
	assert.False(t, profile.CreatedAt.IsZero(), "CreatedAt is assigned on insert")

	got, err := store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Chen", got.FullName)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
	assert.Equal(t, []string{"PostgreSQL"}, got.Technologies)
	assert.Equal(t, []string{"English"}, got.Languages)
	assert.True(t, got.IsActive)
}

func TestStoreProfileUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.StoreProfile(ctx, &types.Profile{ID: "u1", FullName: "Alice"}))
	require.NoError(t, store.StoreProfile(ctx, &types.Profile{ID: "u1", FullName: "Alice Chen", Skills: []string{"Go"}}))

	got, err := store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Chen", got.FullName)
	assert.Equal(t, []string{"Go"}, got.Skills)

	profiles, err := store.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1, "upsert must not duplicate rows")
}

func TestStoreProfileValidation(t *testing.T) {
	store := newTestStore(t)

	err := store.StoreProfile(context.Background(), &types.Profile{ID: "u1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestGetProfileNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetProfile(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListProfilesCreationOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, store.StoreProfile(ctx, &types.Profile{
			ID:        id,
			FullName:  "User " + id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	profiles, err := store.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "u1", profiles[0].ID)
	assert.Equal(t, "u3", profiles[2].ID)
}

func TestStoreProjectRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	project := &types.Project{
		ID:           "p1",
		Title:        "Analytics Platform",
		Description:  "Realtime dashboards",
		Technologies: []string{"Python", "FastAPI"},
		Roles:        []string{"backend developer"},
		TeamLeadID:   "u9",
		Status:       types.StatusActive,
	}
	require.NoError(t, store.StoreProject(ctx, project))

	got, err := store.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Analytics Platform", got.Title)
	assert.Equal(t, types.StatusActive, got.Status)
	assert.Equal(t, []string{"Python", "FastAPI"}, got.Technologies)
	assert.Equal(t, "u9", got.TeamLeadID)
}

func TestStoreProjectRejectsUnknownStatus(t *testing.T) {
	store := newTestStore(t)

	err := store.StoreProject(context.Background(), &types.Project{
		ID: "p1", Title: "X", Status: "archived",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestGetProjectNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetProject(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateNotificationAssignsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n := &types.Notification{
		UserID:  "u1",
		Title:   "New match",
		Message: "Your profile matches the project Analytics",
		Type:    types.NotificationTypeMatch,
	}
	require.NoError(t, store.CreateNotification(ctx, n))
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	list, err := store.ListNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, n.ID, list[0].ID)
	assert.False(t, list[0].IsRead)
	assert.Nil(t, list[0].ReadAt)
}

func TestListNotificationsNewestFirstAndScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateNotification(ctx, &types.Notification{
			UserID:    "u1",
			Title:     "New match",
			Message:   "m",
			Type:      types.NotificationTypeMatch,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.CreateNotification(ctx, &types.Notification{
		UserID: "u2", Title: "New match", Message: "m", Type: types.NotificationTypeMatch,
	}))

	list, err := store.ListNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].CreatedAt.After(list[2].CreatedAt))
}

func TestMarkNotificationRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n := &types.Notification{UserID: "u1", Title: "t", Message: "m", Type: types.NotificationTypeMatch}
	require.NoError(t, store.CreateNotification(ctx, n))

	require.NoError(t, store.MarkNotificationRead(ctx, n.ID, "u1"))

	list, err := store.ListNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
	require.NotNil(t, list[0].ReadAt)

	// Marking again is a no-op, not an error.
	require.NoError(t, store.MarkNotificationRead(ctx, n.ID, "u1"))
}

func TestMarkNotificationReadWrongUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n := &types.Notification{UserID: "u1", Title: "t", Message: "m", Type: types.NotificationTypeMatch}
	require.NoError(t, store.CreateNotification(ctx, n))

	err := store.MarkNotificationRead(ctx, n.ID, "u2")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.MarkNotificationRead(ctx, "missing", "u1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateNotification(ctx, &types.Notification{
			UserID: "u1", Title: "t", Message: "m", Type: types.NotificationTypeMatch,
		}))
	}

	count, err := store.MarkAllNotificationsRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = store.MarkAllNotificationsRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count, "second call has nothing left to mark")
}

func TestCacheRoundTripAndOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetCache(ctx, "k", `["p1"]`, time.Hour))

	got, err := store.GetCache(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `["p1"]`, got)

	require.NoError(t, store.SetCache(ctx, "k", `["p1","p2"]`, time.Hour))
	got, err = store.GetCache(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `["p1","p2"]`, got)
}

func TestCacheMissAndExpiry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetCache(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Entries at or past their expiry read as misses.
	require.NoError(t, store.SetCache(ctx, "k", "v", time.Nanosecond))
	_, err = store.GetCache(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCacheDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetCache(ctx, "k", "v", time.Hour))
	require.NoError(t, store.DeleteCache(ctx, "k"))

	_, err := store.GetCache(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting a missing key is fine.
	require.NoError(t, store.DeleteCache(ctx, "k"))
}

func TestCacheRejectsNonPositiveTTL(t *testing.T) {
	store := newTestStore(t)

	err := store.SetCache(context.Background(), "k", "v", 0)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
