package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/vidtube-api/internal/auth"
	"github.com/redmonkez12/vidtube-api/internal/httputil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ChannelResponse wraps a channel profile
type ChannelResponse struct {
	Channel *ChannelProfile `json:"channel"`
}

// Channel returns a public channel profile
// @Summary      Channel profile
// @Description  Subscriber counts for a channel. isSubscribed reflects the caller when a token is sent.
// @Tags         users
// @Produce      json
// @Param        username path string true "Channel username"
// @Success      200 {object} ChannelResponse
// @Failure      404 {object} httputil.ErrorResponse "Channel does not exist"
// @Router       /users/channel/{username} [get]
func (h *Handler) Channel(w http.ResponseWriter, r *http.Request) error {
	var viewer *uuid.UUID
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		viewer = &identity.UserID
	}

	channel, err := h.service.ChannelProfile(r.Context(), chi.URLParam(r, "username"), viewer)
	if err != nil {
		return err
	}

	httputil.RespondJSON(w, ChannelResponse{Channel: channel}, http.StatusOK)
	return nil
}

// WatchHistory lists the caller's watched videos
// @Summary      Watch history
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} WatchedVideo
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /users/watch-history [get]
func (h *Handler) WatchHistory(w http.ResponseWriter, r *http.Request) error {
	identity, err := auth.RequireIdentity(r.Context())
	if err != nil {
		return err
	}

	videos, err := h.service.WatchHistory(r.Context(), identity.UserID)
	if err != nil {
		return err
	}

	httputil.RespondJSON(w, videos, http.StatusOK)
	return nil
}
