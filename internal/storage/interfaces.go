// Package storage provides composable storage interfaces for the matching
// service.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed. The matching engine
// only reads profiles and projects; it writes notifications and cache
// snapshots through their own interfaces.
package storage

import (
	"context"
	"time"

	"github.com/projectfinder/matching/pkg/types"
)

// ProfileStore provides read access to the profile corpus plus the upsert
// needed to populate it.
type ProfileStore interface {
	// StoreProfile creates or updates a profile (upsert semantics).
	StoreProfile(ctx context.Context, profile *types.Profile) error

	// GetProfile retrieves a profile by ID.
	// Returns ErrNotFound if the profile doesn't exist.
	GetProfile(ctx context.Context, id string) (*types.Profile, error)

	// ListProfiles returns the full current profile corpus in stable
	// (creation) order. Used to source what gets reindexed.
	ListProfiles(ctx context.Context) ([]types.Profile, error)
}

// ProjectStore provides read access to the project corpus plus the upsert
// needed to populate it.
type ProjectStore interface {
	// StoreProject creates or updates a project (upsert semantics).
	StoreProject(ctx context.Context, project *types.Project) error

	// GetProject retrieves a project by ID.
	// Returns ErrNotFound if the project doesn't exist.
	GetProject(ctx context.Context, id string) (*types.Project, error)

	// ListProjects returns the full current project corpus in stable
	// (creation) order.
	ListProjects(ctx context.Context) ([]types.Project, error)
}

// NotificationStore manages user notification records.
// The match-change notifier only calls Create; the read and mark
// operations serve the notification API.
type NotificationStore interface {
	// CreateNotification persists a new notification. The implementation
	// assigns ID and CreatedAt when they are unset.
	CreateNotification(ctx context.Context, n *types.Notification) error

	// ListNotifications returns all notifications for a user, newest first.
	ListNotifications(ctx context.Context, userID string) ([]types.Notification, error)

	// MarkNotificationRead marks a single notification as read.
	// Returns ErrNotFound if it doesn't exist or belongs to another user.
	MarkNotificationRead(ctx context.Context, id, userID string) error

	// MarkAllNotificationsRead marks all of a user's unread notifications
	// as read. Returns the number of notifications updated.
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)
}

// Cache is a key/value cache with per-entry TTL. The notifier uses it to
// snapshot previous match IDs; expired entries read as misses.
type Cache interface {
	// GetCache returns the value for key, or ErrNotFound when the key is
	// missing or expired.
	GetCache(ctx context.Context, key string) (string, error)

	// SetCache stores value under key with the given TTL, replacing any
	// previous entry.
	SetCache(ctx context.Context, key, value string, ttl time.Duration) error

	// DeleteCache removes a cache entry. Deleting a missing key is not an
	// error.
	DeleteCache(ctx context.Context, key string) error
}

// VectorHit is one nearest-neighbor result from a storage-level vector
// search. Distance is squared Euclidean, matching the in-memory index.
type VectorHit struct {
	// ID is the entity ID the vector belongs to.
	ID string

	// Distance is the squared Euclidean distance to the query vector.
	Distance float64
}

// VectorSearcher is an optional capability of a store: exact
// nearest-neighbor search over named vector collections. When the backing
// store implements it (the pgvector-backed Postgres store does), the
// matcher delegates ranking to the database instead of building an
// in-memory index. Results must be identical to an exact in-memory
// search.
type VectorSearcher interface {
	// ReplaceVectors discards the collection's previous contents and
	// stores the given vectors. ids and vectors are parallel slices.
	ReplaceVectors(ctx context.Context, collection string, ids []string, vectors [][]float32) error

	// SearchVectors returns up to k nearest entries by squared Euclidean
	// distance, ascending, ties broken by insertion order.
	SearchVectors(ctx context.Context, collection string, query []float32, k int) ([]VectorHit, error)
}

// Store composes everything a fully configured backend provides.
// Both the SQLite and Postgres backends satisfy it.
type Store interface {
	ProfileStore
	ProjectStore
	NotificationStore
	Cache

	// Close releases any resources held by the store.
	Close() error
}
