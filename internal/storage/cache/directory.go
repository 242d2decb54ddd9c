package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tinywideclouds/go-photoshare-notifier/pkg/photoshare"
)

// CacheClient defines the subset of Redis commands we need.
type CacheClient interface {
	// Get returns ErrCacheMiss (or any other error) when nothing usable is cached.
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// CachedDirectory is a read-aside decorator for any ViewerDirectory.
// Only existing viewers are cached: a user who signs up after being shared
// with must be visible on the very next lookup.
type CachedDirectory struct {
	realDirectory photoshare.ViewerDirectory
	cache         CacheClient
	ttl           time.Duration
	logger        *slog.Logger
}

func NewCachedDirectory(realDirectory photoshare.ViewerDirectory, cache CacheClient, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	return &CachedDirectory{
		realDirectory: realDirectory,
		cache:         cache,
		ttl:           ttl,
		logger:        logger.With("component", "CachedDirectory"),
	}
}

func (d *CachedDirectory) GetViewer(ctx context.Context, viewerID string) (*photoshare.Viewer, error) {
	key := d.cacheKey(viewerID)

	var cached photoshare.Viewer
	if err := d.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	viewer, err := d.realDirectory.GetViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, nil
	}

	// The cache is an optimization; a failed write only costs a later miss.
	if err := d.cache.Set(ctx, key, viewer, d.ttl); err != nil {
		d.logger.Warn("Failed to populate viewer cache", "viewer_id", viewerID, "err", err)
	}
	return viewer, nil
}

// Invalidate drops the cached entry so the next lookup reads the directory.
func (d *CachedDirectory) Invalidate(ctx context.Context, viewerID string) error {
	return d.cache.Del(ctx, d.cacheKey(viewerID))
}

func (d *CachedDirectory) cacheKey(viewerID string) string {
	return fmt.Sprintf("photoshare:viewer:%s", viewerID)
}
