package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/nexuslab/vigil/pkg/models"
)

const defaultKey = "vigil:alert_feed"

// RedisFeed keeps the feed in a Redis list so several API replicas can show
// the same live view. LPUSH + LTRIM bound the list to the window.
type RedisFeed struct {
	client redis.UniversalClient
	key    string
	window int
	logger *slog.Logger
}

func NewRedisFeed(ctx context.Context, url string, logger *slog.Logger) (*RedisFeed, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisFeed{
		client: client,
		key:    defaultKey,
		window: Window,
		logger: logger.With("module", "redis_feed"),
	}, nil
}

func (f *RedisFeed) Append(ctx context.Context, entry models.FeedEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal feed entry: %w", err)
	}

	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, f.key, payload)
	pipe.LTrim(ctx, f.key, 0, int64(f.window-1))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append feed entry: %w", err)
	}

	return nil
}

func (f *RedisFeed) Recent(ctx context.Context, limit int) ([]models.FeedEntry, error) {
	if limit <= 0 || limit > f.window {
		limit = f.window
	}

	raw, err := f.client.LRange(ctx, f.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	entries := make([]models.FeedEntry, 0, len(raw))

	for _, item := range raw {
		var entry models.FeedEntry

		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			f.logger.Warn("Skipping malformed feed entry", "error", err)

			continue
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func (f *RedisFeed) Close() error {
	return f.client.Close()
}
