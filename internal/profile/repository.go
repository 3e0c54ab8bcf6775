package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrChannelNotFound = errors.New("channel not found")

// Repository runs the aggregation queries against Postgres through Bun
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// ChannelProfile loads the channel named username with its subscription counts.
// isSubscribed is true only when viewer is set and subscribes to the channel.
func (r *Repository) ChannelProfile(ctx context.Context, username string, viewer *uuid.UUID) (*ChannelProfile, error) {
	q := r.db.NewSelect().
		TableExpr("users AS u").
		ColumnExpr("u.id, u.full_name, u.username, u.email, u.avatar, u.cover_image").
		ColumnExpr("(SELECT COUNT(*) FROM subscriptions AS s WHERE s.channel_id = u.id) AS subscribers_count").
		ColumnExpr("(SELECT COUNT(*) FROM subscriptions AS s WHERE s.subscriber_id = u.id) AS channel_subscribed_to_count")

	if viewer != nil {
		q = q.ColumnExpr("EXISTS (SELECT 1 FROM subscriptions AS s WHERE s.channel_id = u.id AND s.subscriber_id = ?) AS is_subscribed", *viewer)
	} else {
		q = q.ColumnExpr("FALSE AS is_subscribed")
	}

	profile := new(ChannelProfile)
	err := q.Where("u.username = ?", strings.ToLower(username)).
		Limit(1).
		Scan(ctx, profile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to load channel profile: %w", err)
	}

	return profile, nil
}

// WatchHistory resolves the user's watch history in order, each video with its owner.
// Unknown users and empty histories both yield an empty slice.
func (r *Repository) WatchHistory(ctx context.Context, userID uuid.UUID) ([]WatchedVideo, error) {
	var videos []WatchedVideo
	err := r.db.NewSelect().
		TableExpr("watch_history AS wh").
		Join("JOIN videos AS v ON v.id = wh.video_id").
		Join("JOIN users AS o ON o.id = v.owner_id").
		ColumnExpr("v.id, v.video_file, v.thumbnail, v.title, v.description, v.duration, v.views, v.is_published, v.created_at").
		ColumnExpr("wh.watched_at").
		ColumnExpr("o.id AS owner__id, o.full_name AS owner__full_name, o.username AS owner__username, o.avatar AS owner__avatar").
		Where("wh.user_id = ?", userID).
		OrderExpr("wh.position ASC").
		Scan(ctx, &videos)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load watch history: %w", err)
	}

	if videos == nil {
		videos = []WatchedVideo{}
	}
	return videos, nil
}
