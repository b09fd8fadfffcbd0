package cmd

import (
	"context"
	"log/slog"

	"github.com/nexuslab/vigil/pkg/feed"
)

// NewFeed returns a Redis-backed feed when a URL is configured, otherwise the
// in-process feed.
func NewFeed(ctx context.Context, logger *slog.Logger, redisURL string) (feed.Feed, error) {
	if redisURL == "" {
		return feed.NewMemoryFeed(), nil
	}

	return feed.NewRedisFeed(ctx, redisURL, logger)
}
