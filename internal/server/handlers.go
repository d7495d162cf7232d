// Package server provides the HTTP API, middleware, and websocket push
// for the matching service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/projectfinder/matching/internal/match"
	"github.com/projectfinder/matching/internal/storage"
	"github.com/projectfinder/matching/pkg/types"
)

// MatchEngine is the slice of the matcher the HTTP layer needs.
type MatchEngine interface {
	FindMatchingProfiles(ctx context.Context, project types.Project, opts match.Options) ([]match.ProfileMatch, error)
	FindMatchingProjects(ctx context.Context, profile types.Profile, opts match.Options) ([]match.ProjectMatch, error)
	CalculateCompatibility(ctx context.Context, project types.Project, profile types.Profile) (float64, error)
	GetRecommendations(ctx context.Context, profile types.Profile, topK int) (*match.Recommendations, error)
}

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Handlers holds the HTTP handlers for the matching API.
type Handlers struct {
	store  storage.Store
	engine MatchEngine
}

// NewHandlers creates the API handlers.
func NewHandlers(store storage.Store, engine MatchEngine) *Handlers {
	return &Handlers{store: store, engine: engine}
}

// CreateProfile handles POST /api/profiles (upsert).
func (h *Handlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var profile types.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.store.StoreProfile(r.Context(), &profile); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid profile", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to store profile", err)
		return
	}
	respondJSON(w, http.StatusCreated, profile)
}

// GetProfile handles GET /api/profiles/{id}.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.store.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "profile not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get profile", err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// CreateProject handles POST /api/projects (upsert).
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	var project types.Project
	if err := json.NewDecoder(r.Body).Decode(&project); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.store.StoreProject(r.Context(), &project); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid project", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to store project", err)
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

// GetProject handles GET /api/projects/{id}.
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get project", err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

// MatchingProfiles handles GET /api/projects/{id}/matching-profiles.
// Query params: top_k, min_score.
func (h *Handlers) MatchingProfiles(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get project", err)
		return
	}

	matches, err := h.engine.FindMatchingProfiles(r.Context(), *project, matchOptions(r))
	if err != nil {
		respondMatchError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"project_id": project.ID,
		"matches":    matches,
	})
}

// MatchingProjects handles GET /api/profiles/{id}/matching-projects.
// Query params: top_k, min_score.
func (h *Handlers) MatchingProjects(w http.ResponseWriter, r *http.Request) {
	profile, err := h.store.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "profile not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get profile", err)
		return
	}

	matches, err := h.engine.FindMatchingProjects(r.Context(), *profile, matchOptions(r))
	if err != nil {
		respondMatchError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"profile_id": profile.ID,
		"matches":    matches,
	})
}

// Compatibility handles GET /api/compatibility/{project_id}/{profile_id}.
func (h *Handlers) Compatibility(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), r.PathValue("project_id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get project", err)
		return
	}
	profile, err := h.store.GetProfile(r.Context(), r.PathValue("profile_id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "profile not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get profile", err)
		return
	}

	score, err := h.engine.CalculateCompatibility(r.Context(), *project, *profile)
	if err != nil {
		respondMatchError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"project_id": project.ID,
		"profile_id": profile.ID,
		"score":      score,
	})
}

// Recommendations handles GET /api/profiles/{id}/recommendations.
// Query param: top_k.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	profile, err := h.store.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "profile not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get profile", err)
		return
	}

	recs, err := h.engine.GetRecommendations(r.Context(), *profile, getQueryInt(r, "top_k", 0))
	if err != nil {
		respondMatchError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recs)
}

// ListNotifications handles GET /api/profiles/{id}/notifications.
func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.store.ListNotifications(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}
	if notifications == nil {
		notifications = []types.Notification{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}

// MarkNotificationRead handles POST /api/profiles/{id}/notifications/{notification_id}/read.
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := h.store.MarkNotificationRead(r.Context(), r.PathValue("notification_id"), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "notification not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to mark notification read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/profiles/{id}/notifications/read-all.
func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.MarkAllNotificationsRead(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to mark notifications read", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"marked_read": count,
	})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// matchOptions reads the ranking options from query parameters.
func matchOptions(r *http.Request) match.Options {
	return match.Options{
		TopK:     getQueryInt(r, "top_k", 0),
		MinScore: getQueryFloat(r, "min_score", 0),
	}
}

// respondMatchError maps a matcher failure to an HTTP status. All
// matcher failures surface as the same unavailable error, so callers
// always see 503.
func respondMatchError(w http.ResponseWriter, err error) {
	if errors.Is(err, match.ErrMatchingUnavailable) {
		respondError(w, http.StatusServiceUnavailable, "matching service unavailable", nil)
		return
	}
	respondError(w, http.StatusInternalServerError, "matching failed", err)
}

// getQueryInt parses an integer query parameter with a default.
func getQueryInt(r *http.Request, key string, defaultValue int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// getQueryFloat parses a float query parameter with a default.
func getQueryFloat(r *http.Request, key string, defaultValue float64) float64 {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultValue
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; just log.
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
