package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the users table row
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Username     string    `bun:"username,notnull,unique"`
	Email        string    `bun:"email,notnull,unique"`
	FullName     string    `bun:"full_name,notnull"`
	Avatar       string    `bun:"avatar,notnull"`
	CoverImage   string    `bun:"cover_image,notnull,default:''"`
	PasswordHash string    `bun:"password_hash,notnull"`
	RefreshToken *string   `bun:"refresh_token"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Subscription links a subscriber to a channel; both are users
type Subscription struct {
	bun.BaseModel `bun:"table:subscriptions,alias:s"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	SubscriberID uuid.UUID `bun:"subscriber_id,notnull,type:uuid,unique:subscriber_channel"`
	ChannelID    uuid.UUID `bun:"channel_id,notnull,type:uuid,unique:subscriber_channel"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Video is the videos table row
type Video struct {
	bun.BaseModel `bun:"table:videos,alias:v"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerID     uuid.UUID `bun:"owner_id,notnull,type:uuid"`
	VideoFile   string    `bun:"video_file,notnull"`
	Thumbnail   string    `bun:"thumbnail,notnull"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,notnull,default:''"`
	Duration    float64   `bun:"duration,notnull,default:0"`
	Views       int64     `bun:"views,notnull,default:0"`
	IsPublished bool      `bun:"is_published,notnull,default:true"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// WatchHistoryEntry is one ordered element of a user's watch history
type WatchHistoryEntry struct {
	bun.BaseModel `bun:"table:watch_history,alias:wh"`

	UserID    uuid.UUID `bun:"user_id,pk,type:uuid"`
	Position  int       `bun:"position,pk"`
	VideoID   uuid.UUID `bun:"video_id,notnull,type:uuid"`
	WatchedAt time.Time `bun:"watched_at,notnull,default:current_timestamp"`
}
