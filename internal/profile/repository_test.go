package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/vidtube-api/internal/database"
)

var channelColumns = []string{
	"id", "full_name", "username", "email", "avatar", "cover_image",
	"subscribers_count", "channel_subscribed_to_count", "is_subscribed",
}

func newRepoWithMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewRepository(database.NewBunDB(sqlDB)), mock
}

func TestRepository_ChannelProfileAnonymous(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	id := uuid.New()

	mock.ExpectQuery(`(?s)^SELECT u\.id, .*FALSE AS is_subscribed FROM users AS u WHERE \(u\.username = 'alice'\) LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(channelColumns).
			AddRow(id.String(), "Alice A", "alice", "a@x.com", "https://cdn/a.png", "", int64(0), int64(0), false))

	profile, err := repo.ChannelProfile(context.Background(), "Alice", nil)
	require.NoError(t, err)

	assert.Equal(t, id, profile.ID)
	assert.Equal(t, int64(0), profile.SubscribersCount)
	assert.Equal(t, int64(0), profile.ChannelSubscribedToCount)
	assert.False(t, profile.IsSubscribed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ChannelProfileWithViewer(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	id := uuid.New()
	viewer := uuid.New()

	mock.ExpectQuery(`(?s)COUNT\(\*\) FROM subscriptions AS s WHERE s\.channel_id = u\.id\) AS subscribers_count.*` +
		`COUNT\(\*\) FROM subscriptions AS s WHERE s\.subscriber_id = u\.id\) AS channel_subscribed_to_count.*` +
		`s\.subscriber_id = '` + viewer.String() + `'\) AS is_subscribed`).
		WillReturnRows(sqlmock.NewRows(channelColumns).
			AddRow(id.String(), "Alice A", "alice", "a@x.com", "https://cdn/a.png", "https://cdn/c.png", int64(12), int64(3), true))

	profile, err := repo.ChannelProfile(context.Background(), "alice", &viewer)
	require.NoError(t, err)

	assert.Equal(t, int64(12), profile.SubscribersCount)
	assert.Equal(t, int64(3), profile.ChannelSubscribedToCount)
	assert.True(t, profile.IsSubscribed)
	assert.Equal(t, "https://cdn/c.png", profile.CoverImage)
}

func TestRepository_ChannelProfileNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM users AS u`).WillReturnRows(sqlmock.NewRows(channelColumns))

	_, err := repo.ChannelProfile(context.Background(), "ghost", nil)
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestRepository_ChannelProfileDBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM users AS u`).WillReturnError(errors.New("connection reset"))

	_, err := repo.ChannelProfile(context.Background(), "alice", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrChannelNotFound)
}

func TestRepository_WatchHistory(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	userID := uuid.New()
	ownerID := uuid.New()
	first, second := uuid.New(), uuid.New()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "video_file", "thumbnail", "title", "description", "duration", "views", "is_published", "created_at",
		"watched_at", "owner__id", "owner__full_name", "owner__username", "owner__avatar",
	}).
		AddRow(first.String(), "v1.mp4", "t1.png", "First", "", 61.5, int64(10), true, created, created, ownerID.String(), "Bob B", "bob", "https://cdn/b.png").
		AddRow(second.String(), "v2.mp4", "t2.png", "Second", "desc", 12.0, int64(2), true, created, created, ownerID.String(), "Bob B", "bob", "https://cdn/b.png")

	mock.ExpectQuery(`(?s)FROM watch_history AS wh JOIN videos AS v ON v\.id = wh\.video_id JOIN users AS o ON o\.id = v\.owner_id ` +
		`WHERE \(wh\.user_id = '` + userID.String() + `'\) ORDER BY wh\.position ASC`).
		WillReturnRows(rows)

	videos, err := repo.WatchHistory(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, videos, 2)
	assert.Equal(t, first, videos[0].ID)
	assert.Equal(t, second, videos[1].ID)
	assert.Equal(t, 61.5, videos[0].Duration)
	assert.Equal(t, Owner{ID: ownerID, FullName: "Bob B", Username: "bob", Avatar: "https://cdn/b.png"}, videos[0].Owner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_WatchHistoryEmpty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM watch_history AS wh`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	videos, err := repo.WatchHistory(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)
}
