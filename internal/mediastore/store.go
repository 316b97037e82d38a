// Package mediastore provides the object-storage gateway for profile
// media: an abstract Store interface, collision-resistant key naming,
// and key-to-URL resolution.
package mediastore

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store uploads media content to a bucket under an opaque key.
type Store interface {
	Put(ctx context.Context, bucket, key string, content []byte, contentType string) error
}

// MediaURL resolves a stored media key to a servable URL against the
// configured public base URL. Pure string composition, no I/O.
func MediaURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}

// UniqueMediaName derives a storage key for an upload that is distinct
// from any previously used key: a date-based prefix, a random UUID, and
// the sanitized original file name.
func UniqueMediaName(originalName string) string {
	name := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	name = strings.Join(strings.Fields(name), "-")
	if name == "" || name == "." || name == "/" {
		name = "upload"
	}

	d := time.Now()
	return fmt.Sprintf("profiles/%d/%d/%d/%v-%s", d.Year(), d.Month(), d.Day(), uuid.New(), name)
}
