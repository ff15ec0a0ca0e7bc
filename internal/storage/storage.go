// Package storage saves uploaded media. The local backend writes into a
// directory served as static files; the MinIO backend writes to a bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"
)

// Store persists media objects under flat keys such as
// "video_1700000000000_1b4e28ba_trailer.mp4".
type Store interface {
	// Save writes the object and returns the URL clients use to fetch it.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// ErrInvalidKey is returned for keys containing path separators.
var ErrInvalidKey = errors.New("storage: invalid key")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeName reduces a client-supplied file name to a safe base name.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// KeyFromURL recovers the object key from a URL returned by Save.
func KeyFromURL(url string) string {
	return path.Base(url)
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}
