package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arjun-saseendran/video-stack/internal/apperror"
	"github.com/arjun-saseendran/video-stack/internal/auth"
	"github.com/arjun-saseendran/video-stack/internal/service"
)

// ProfileHandler exposes the read-model endpoints: channel profiles and
// watch history.
type ProfileHandler struct {
	responder
	profiles *service.ProfileService
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger, debug bool) *ProfileHandler {
	return &ProfileHandler{
		responder: responder{logger: logger, debug: debug},
		profiles:  profiles,
	}
}

// HandleChannelProfile returns the public channel view for a username,
// including whether the authenticated viewer subscribes to it.
//
// HTTP: GET /api/v1/users/c/{username} (authenticated)
func (h *ProfileHandler) HandleChannelProfile(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())
	username := chi.URLParam(r, "username")

	profile, err := h.profiles.ChannelProfile(r.Context(), username, viewerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile, "channel profile fetched successfully")
}

// HandleWatchHistory returns the authenticated user's watched videos in
// order, each with its owner projected to public fields.
//
// HTTP: GET /api/v1/users/history (authenticated)
func (h *ProfileHandler) HandleWatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	videos, err := h.profiles.WatchHistory(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, videos, "watch history fetched successfully")
}
