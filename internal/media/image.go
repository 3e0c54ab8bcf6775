package media

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedImage is returned when a file's content is not one of the accepted image formats
var ErrUnsupportedImage = errors.New("file must be a JPEG, PNG, GIF or WebP image")

var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// DetectImage sniffs the file content. The client-supplied name and extension are never consulted.
func DetectImage(path string) (*mimetype.MIME, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	if !mimetype.EqualsAny(mtype.String(), imageTypes...) {
		return nil, ErrUnsupportedImage
	}
	return mtype, nil
}

// SaveImage spools an image field like SaveMultipartFile, rejects non-image content and
// renames the file so its extension matches the sniffed type.
func SaveImage(r *http.Request, field, dir string) (string, error) {
	path, err := SaveMultipartFile(r, field, dir)
	if err != nil {
		return "", err
	}

	mtype, err := DetectImage(path)
	if err != nil {
		RemoveFiles(path)
		return "", err
	}

	renamed := strings.TrimSuffix(path, fileExt(path)) + mtype.Extension()
	if renamed == path {
		return path, nil
	}
	if err := os.Rename(path, renamed); err != nil {
		RemoveFiles(path)
		return "", fmt.Errorf("failed to rename upload: %w", err)
	}
	return renamed, nil
}
