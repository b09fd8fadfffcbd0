// Package feed keeps the bounded, most-recent-first live alert feed shown
// alongside the running engine.
package feed

import (
	"context"

	"github.com/nexuslab/vigil/pkg/models"
)

// Window is how many entries the feed retains. Older entries fall off.
const Window = 20

// Feed is a bounded most-recent-first list of dispatch outcomes. Append is
// called on every dispatch attempt, successful or not.
type Feed interface {
	Append(ctx context.Context, entry models.FeedEntry) error
	Recent(ctx context.Context, limit int) ([]models.FeedEntry, error)
	Close() error
}
