// Package media stores user-supplied images on an S3-compatible media host.
package media

import (
	"context"
	"errors"

	"github.com/redmonkez12/vidtube-api/internal/logging"
)

var ErrEmptyPath = errors.New("local file path is empty")

// Asset is a stored file
type Asset struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Uploader pushes a local file to the media host and returns its public URL.
// The local file is removed once the attempt completes, whether or not it succeeded.
// Delete removes a stored object by key; deleting a missing key is not an error.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (*Asset, error)
	Delete(ctx context.Context, key string) error
}

// Discard deletes assets that were uploaded for a write that did not complete.
// Failures are logged with the orphaned key and otherwise ignored.
func Discard(ctx context.Context, u Uploader, assets ...*Asset) {
	ctx = context.WithoutCancel(ctx)
	logger := logging.GetLoggerFromContext(ctx)

	for _, asset := range assets {
		if asset == nil || asset.Key == "" {
			continue
		}
		if err := u.Delete(ctx, asset.Key); err != nil {
			logger.Error("failed to delete orphaned media", "key", asset.Key, "error", err.Error())
		}
	}
}
