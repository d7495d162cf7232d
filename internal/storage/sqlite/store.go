// Package sqlite provides the SQLite implementation of the storage
// interfaces. It is the default backend: zero external services, one
// file on disk. Vector search is not implemented here; the matcher
// falls back to its in-memory index when this backend is active.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/projectfinder/matching/internal/storage"
	"github.com/projectfinder/matching/pkg/types"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// NewStore opens a SQLite database at dsn, configures WAL mode, and
// applies the schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// StoreProfile creates or updates a profile.
func (s *Store) StoreProfile(ctx context.Context, profile *types.Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	skills, err := encodeStrings(profile.Skills)
	if err != nil {
		return fmt.Errorf("failed to encode skills: %w", err)
	}
	technologies, err := encodeStrings(profile.Technologies)
	if err != nil {
		return fmt.Errorf("failed to encode technologies: %w", err)
	}
	languages, err := encodeStrings(profile.Languages)
	if err != nil {
		return fmt.Errorf("failed to encode languages: %w", err)
	}

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name, bio, skills, experience, education, technologies, role, languages, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			full_name = excluded.full_name,
			bio = excluded.bio,
			skills = excluded.skills,
			experience = excluded.experience,
			education = excluded.education,
			technologies = excluded.technologies,
			role = excluded.role,
			languages = excluded.languages,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`, profile.ID, profile.Email, profile.FullName, profile.Bio, skills,
		profile.Experience, profile.Education, technologies, profile.Role,
		languages, profile.IsActive, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (*types.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, bio, skills, experience, education, technologies, role, languages, is_active, created_at, updated_at
		FROM profiles WHERE id = ?
	`, id)

	profile, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// ListProfiles returns all profiles in creation order.
func (s *Store) ListProfiles(ctx context.Context) ([]types.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, full_name, bio, skills, experience, education, technologies, role, languages, is_active, created_at, updated_at
		FROM profiles ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []types.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

// StoreProject creates or updates a project.
func (s *Store) StoreProject(ctx context.Context, project *types.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	technologies, err := encodeStrings(project.Technologies)
	if err != nil {
		return fmt.Errorf("failed to encode technologies: %w", err)
	}
	roles, err := encodeStrings(project.Roles)
	if err != nil {
		return fmt.Errorf("failed to encode roles: %w", err)
	}

	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, description, technologies, roles, team_lead_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			technologies = excluded.technologies,
			roles = excluded.roles,
			team_lead_id = excluded.team_lead_id,
			status = excluded.status
	`, project.ID, project.Title, project.Description, technologies, roles,
		project.TeamLeadID, string(project.Status), project.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*types.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, technologies, roles, team_lead_id, status, created_at
		FROM projects WHERE id = ?
	`, id)

	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListProjects returns all projects in creation order.
func (s *Store) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, technologies, roles, team_lead_id, status, created_at
		FROM projects ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// CreateNotification persists a notification, assigning ID and CreatedAt
// when they are unset.
func (s *Store) CreateNotification(ctx context.Context, n *types.Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, related_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Title, n.Message, n.Type, n.RelatedID, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]types.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, message, type, related_id, is_read, created_at, read_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []types.Notification
	for rows.Next() {
		var n types.Notification
		var relatedID sql.NullString
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &relatedID, &n.IsRead, &n.CreatedAt, &readAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.RelatedID = relatedID.String
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks one notification as read. The userID guard
// keeps users from touching each other's notifications.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = 1, read_at = ?
		WHERE id = ? AND user_id = ? AND is_read = 0
	`, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		// Distinguish "already read" from "not yours / missing".
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM notifications WHERE id = ? AND user_id = ?)`,
			id, userID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check notification: %w", err)
		}
		if !exists {
			return storage.ErrNotFound
		}
	}
	return nil
}

// MarkAllNotificationsRead marks all unread notifications for the user.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = 1, read_at = ?
		WHERE user_id = ? AND is_read = 0
	`, time.Now().UTC(), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check update result: %w", err)
	}
	return int(affected), nil
}

// GetCache returns the cached value for key, treating expired entries as
// misses. Expired rows are removed opportunistically on read.
func (s *Store) GetCache(ctx context.Context, key string) (string, error) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache WHERE key = ?`, key).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cache: %w", err)
	}

	if time.Now().Unix() >= expiresAt {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ? AND expires_at <= ?`, key, time.Now().Unix())
		return "", storage.ErrNotFound
	}
	return value, nil
}

// SetCache stores value under key with the given TTL.
func (s *Store) SetCache(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: ttl must be positive", storage.ErrInvalidInput)
	}

	expiresAt := time.Now().Add(ttl).Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// DeleteCache removes a cache entry.
func (s *Store) DeleteCache(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for the shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*types.Profile, error) {
	var p types.Profile
	var email, bio, experience, education, role sql.NullString
	var skills, technologies, languages sql.NullString

	err := row.Scan(&p.ID, &email, &p.FullName, &bio, &skills, &experience,
		&education, &technologies, &role, &languages, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Email = email.String
	p.Bio = bio.String
	p.Experience = experience.String
	p.Education = education.String
	p.Role = role.String

	if p.Skills, err = decodeStrings(skills); err != nil {
		return nil, fmt.Errorf("malformed skills column: %w", err)
	}
	if p.Technologies, err = decodeStrings(technologies); err != nil {
		return nil, fmt.Errorf("malformed technologies column: %w", err)
	}
	if p.Languages, err = decodeStrings(languages); err != nil {
		return nil, fmt.Errorf("malformed languages column: %w", err)
	}
	return &p, nil
}

func scanProject(row scanner) (*types.Project, error) {
	var p types.Project
	var description, teamLeadID sql.NullString
	var technologies, roles sql.NullString
	var status string

	err := row.Scan(&p.ID, &p.Title, &description, &technologies, &roles,
		&teamLeadID, &status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.TeamLeadID = teamLeadID.String
	p.Status = types.ProjectStatus(status)

	if p.Technologies, err = decodeStrings(technologies); err != nil {
		return nil, fmt.Errorf("malformed technologies column: %w", err)
	}
	if p.Roles, err = decodeStrings(roles); err != nil {
		return nil, fmt.Errorf("malformed roles column: %w", err)
	}
	return &p, nil
}

// encodeStrings serialises a string slice to a JSON column value.
// Nil slices store as NULL.
func encodeStrings(values []string) (any, error) {
	if values == nil {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// decodeStrings parses a JSON array column. NULL reads back as nil.
func decodeStrings(column sql.NullString) ([]string, error) {
	if !column.Valid || column.String == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(column.String), &values); err != nil {
		return nil, err
	}
	return values, nil
}
