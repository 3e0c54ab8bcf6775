// Package profile aggregates users with their subscriptions and watch history.
package profile

import (
	"time"

	"github.com/google/uuid"
)

// ChannelProfile is a user viewed as the target of subscriptions
type ChannelProfile struct {
	ID                       uuid.UUID `bun:"id" json:"id"`
	FullName                 string    `bun:"full_name" json:"fullName"`
	Username                 string    `bun:"username" json:"username"`
	Email                    string    `bun:"email" json:"email"`
	Avatar                   string    `bun:"avatar" json:"avatar"`
	CoverImage               string    `bun:"cover_image" json:"coverImage"`
	SubscribersCount         int64     `bun:"subscribers_count" json:"subscribersCount"`
	ChannelSubscribedToCount int64     `bun:"channel_subscribed_to_count" json:"channelSubscribedToCount"`
	IsSubscribed             bool      `bun:"is_subscribed" json:"isSubscribed"`
}

// Owner is the public projection of a video's uploader
type Owner struct {
	ID       uuid.UUID `bun:"id" json:"id"`
	FullName string    `bun:"full_name" json:"fullName"`
	Username string    `bun:"username" json:"username"`
	Avatar   string    `bun:"avatar" json:"avatar"`
}

// WatchedVideo is one watch history entry resolved to its video and owner
type WatchedVideo struct {
	ID          uuid.UUID `bun:"id" json:"id"`
	VideoFile   string    `bun:"video_file" json:"videoFile"`
	Thumbnail   string    `bun:"thumbnail" json:"thumbnail"`
	Title       string    `bun:"title" json:"title"`
	Description string    `bun:"description" json:"description"`
	Duration    float64   `bun:"duration" json:"duration"`
	Views       int64     `bun:"views" json:"views"`
	IsPublished bool      `bun:"is_published" json:"isPublished"`
	CreatedAt   time.Time `bun:"created_at" json:"createdAt"`
	WatchedAt   time.Time `bun:"watched_at" json:"watchedAt"`
	Owner       Owner     `bun:"embed:owner__" json:"owner"`
}
