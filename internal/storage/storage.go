// Package storage wraps the blob store that holds uploaded file contents.
package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/driveclone/backend/internal/config"
	"github.com/google/uuid"
)

// Store is the subset of blob operations the file routes need.
type Store interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Remove deletes all keys in one batch call. Keys that could not be
	// removed are reported through a *RemoveError.
	Remove(ctx context.Context, keys ...string) error
	PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	EnsureBucket(ctx context.Context) error
}

// RemoveError lists the keys a batch removal failed on.
type RemoveError struct {
	Failed map[string]error
}

func (e *RemoveError) Error() string {
	keys := e.Keys()
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", key, e.Failed[key]))
	}
	return fmt.Sprintf("failed to remove %d object(s): %s", len(keys), strings.Join(parts, "; "))
}

// Keys returns the failed keys in sorted order.
func (e *RemoveError) Keys() []string {
	keys := make([]string, 0, len(e.Failed))
	for key := range e.Failed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ObjectKey builds a collision-resistant key for an uploaded file.
func ObjectKey(filename string) string {
	return uuid.New().String() + "_" + filename
}

// New builds the store selected by cfg.Backend.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.StorageBackendMinIO:
		return NewMinIOStore(cfg)
	case config.StorageBackendS3:
		return NewS3Store(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
