package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/vidtube-api/internal/apperror"
	"github.com/redmonkez12/vidtube-api/internal/httputil"
)

// Store runs the aggregation queries
type Store interface {
	ChannelProfile(ctx context.Context, username string, viewer *uuid.UUID) (*ChannelProfile, error)
	WatchHistory(ctx context.Context, userID uuid.UUID) ([]WatchedVideo, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ChannelProfile returns the channel named username; viewer is nil for anonymous callers
func (s *Service) ChannelProfile(ctx context.Context, username string, viewer *uuid.UUID) (*ChannelProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.Validation("username is missing")
	}

	profile, err := s.store.ChannelProfile(ctx, username, viewer)
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			return nil, apperror.NotFound("channel does not exist").WithCode(httputil.CodeChannelNotFound)
		}
		return nil, apperror.Internal("failed to fetch channel", err)
	}

	if viewer == nil {
		profile.IsSubscribed = false
	}
	return profile, nil
}

// WatchHistory never reports a missing user; absence is an empty list
func (s *Service) WatchHistory(ctx context.Context, userID uuid.UUID) ([]WatchedVideo, error) {
	videos, err := s.store.WatchHistory(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to fetch watch history", err)
	}
	if videos == nil {
		videos = []WatchedVideo{}
	}
	return videos, nil
}
