package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingFile is returned when the multipart field carries no file
var ErrMissingFile = errors.New("file is missing")

// SaveMultipartFile spools the file in form field to dir and returns its path.
// The request must already be parsed with ParseMultipartForm.
func SaveMultipartFile(r *http.Request, field, dir string) (string, error) {
	src, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", ErrMissingFile
		}
		return "", fmt.Errorf("failed to read %s: %w", field, err)
	}
	defer src.Close()

	ext := fileExt(header.Filename)
	dst, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return dst.Name(), nil
}

func fileExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// RemoveFiles deletes spooled files; empty paths and already removed files are ignored
func RemoveFiles(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
