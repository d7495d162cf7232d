// Package notify turns the matcher's current output into "new since last
// time" notification events.
//
// The only persisted state is a per-user (or per-project) snapshot of
// previously seen match IDs, held in the key/value cache with a TTL.
// A missing or expired snapshot makes the next check behave as a cold
// start: the current set is stored and no notifications are produced.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/projectfinder/matching/internal/match"
	"github.com/projectfinder/matching/internal/storage"
	"github.com/projectfinder/matching/pkg/types"
)

// SnapshotTTL is how long a match snapshot lives in the cache. Expiry
// causes the next check to cold-start, which is an accepted
// false-negative window rather than an error.
const SnapshotTTL = time.Hour

// matchFinder is the slice of the Matcher the notifier needs.
type matchFinder interface {
	FindMatchingProjects(ctx context.Context, profile types.Profile, opts match.Options) ([]match.ProjectMatch, error)
	FindMatchingProfiles(ctx context.Context, project types.Project, opts match.Options) ([]match.ProfileMatch, error)
}

// Notifier diffs current match results against cached snapshots and
// creates one notification per newly appeared match.
type Notifier struct {
	matcher       matchFinder
	cache         storage.Cache
	notifications storage.NotificationStore
	ttl           time.Duration
}

// NewNotifier creates a notifier using the default snapshot TTL.
func NewNotifier(matcher matchFinder, cache storage.Cache, notifications storage.NotificationStore) *Notifier {
	return NewNotifierWithTTL(matcher, cache, notifications, SnapshotTTL)
}

// NewNotifierWithTTL creates a notifier with a custom snapshot TTL.
func NewNotifierWithTTL(matcher matchFinder, cache storage.Cache, notifications storage.NotificationStore, ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = SnapshotTTL
	}
	return &Notifier{
		matcher:       matcher,
		cache:         cache,
		notifications: notifications,
		ttl:           ttl,
	}
}

// CheckNewMatches finds the projects currently matching the profile and
// notifies the user about any project that was not in the previous
// snapshot. Snapshot equality is by project ID only; a score change for
// an already-known project is not renotified.
func (n *Notifier) CheckNewMatches(ctx context.Context, profile types.Profile) error {
	current, err := n.matcher.FindMatchingProjects(ctx, profile, match.Options{})
	if err != nil {
		return fmt.Errorf("check new matches for user %s: %w", profile.ID, err)
	}

	currentIDs := make([]string, len(current))
	for i, m := range current {
		currentIDs[i] = m.Project.ID
	}

	key := "matches:user:" + profile.ID
	previous, coldStart := n.readSnapshot(ctx, key)
	if coldStart {
		n.writeSnapshot(ctx, key, currentIDs)
		return nil
	}

	for _, m := range current {
		if previous[m.Project.ID] {
			continue
		}
		n.create(ctx, types.Notification{
			UserID:    profile.ID,
			Title:     "New matching project",
			Message:   fmt.Sprintf("A new project matches your profile: %s", m.Project.Title),
			Type:      types.NotificationTypeProjectMatch,
			RelatedID: m.Project.ID,
		})
	}

	n.writeSnapshot(ctx, key, currentIDs)
	return nil
}

// CheckProjectMatches finds the profiles currently matching the project
// and notifies each newly matched user about the project.
func (n *Notifier) CheckProjectMatches(ctx context.Context, project types.Project) error {
	current, err := n.matcher.FindMatchingProfiles(ctx, project, match.Options{})
	if err != nil {
		return fmt.Errorf("check matches for project %s: %w", project.ID, err)
	}

	currentIDs := make([]string, len(current))
	for i, m := range current {
		currentIDs[i] = m.Profile.ID
	}

	key := "matches:project:" + project.ID
	previous, coldStart := n.readSnapshot(ctx, key)
	if coldStart {
		n.writeSnapshot(ctx, key, currentIDs)
		return nil
	}

	for _, m := range current {
		if previous[m.Profile.ID] {
			continue
		}
		n.create(ctx, types.Notification{
			UserID:    m.Profile.ID,
			Title:     "New match",
			Message:   fmt.Sprintf("Your profile matches the project %s", project.Title),
			Type:      types.NotificationTypeMatch,
			RelatedID: project.ID,
		})
	}

	n.writeSnapshot(ctx, key, currentIDs)
	return nil
}

// Sweep runs one match check for every active profile and every active
// project. Per-entity failures are logged and do not stop the sweep;
// the returned error covers only corpus listing failures.
func (n *Notifier) Sweep(ctx context.Context, profiles storage.ProfileStore, projects storage.ProjectStore) error {
	allProfiles, err := profiles.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("sweep: list profiles: %w", err)
	}
	allProjects, err := projects.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("sweep: list projects: %w", err)
	}

	for _, profile := range allProfiles {
		if !profile.IsActive {
			continue
		}
		if err := n.CheckNewMatches(ctx, profile); err != nil {
			log.Printf("warning: sweep skipped user %s: %v", profile.ID, err)
		}
	}

	for _, project := range allProjects {
		if project.Status != "" && project.Status != types.StatusActive {
			continue
		}
		if err := n.CheckProjectMatches(ctx, project); err != nil {
			log.Printf("warning: sweep skipped project %s: %v", project.ID, err)
		}
	}
	return nil
}

// readSnapshot loads the previous match ID set for key. Any cache miss,
// read failure, or malformed payload is treated as a cold start.
func (n *Notifier) readSnapshot(ctx context.Context, key string) (map[string]bool, bool) {
	raw, err := n.cache.GetCache(ctx, key)
	if err != nil {
		return nil, true
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		log.Printf("warning: malformed match snapshot for %s, treating as cold start: %v", key, err)
		return nil, true
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, false
}

// writeSnapshot overwrites the cached snapshot with the current ID set.
// A write failure only shortens the dedup window, so it is logged and
// not propagated.
func (n *Notifier) writeSnapshot(ctx context.Context, key string, ids []string) {
	raw, err := json.Marshal(ids)
	if err != nil {
		log.Printf("warning: failed to encode match snapshot for %s: %v", key, err)
		return
	}
	if err := n.cache.SetCache(ctx, key, string(raw), n.ttl); err != nil {
		log.Printf("warning: failed to store match snapshot for %s: %v", key, err)
	}
}

// create requests one notification. Sink failures are the sink's concern;
// they are logged and never retried here.
func (n *Notifier) create(ctx context.Context, notification types.Notification) {
	if err := n.notifications.CreateNotification(ctx, &notification); err != nil {
		log.Printf("warning: failed to create %s notification for user %s: %v",
			notification.Type, notification.UserID, err)
	}
}
