package feed

import (
	"context"
	"sync"

	"github.com/nexuslab/vigil/pkg/models"
)

// MemoryFeed is the in-process feed implementation, safe for concurrent use.
type MemoryFeed struct {
	mu      sync.Mutex
	entries []models.FeedEntry
	window  int
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{window: Window}
}

// Append prepends the entry and drops anything past the window.
func (f *MemoryFeed) Append(_ context.Context, entry models.FeedEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append([]models.FeedEntry{entry}, f.entries...)
	if len(f.entries) > f.window {
		f.entries = f.entries[:f.window]
	}

	return nil
}

// Recent returns up to limit entries, most recent first. A limit of zero or
// less returns the whole window.
func (f *MemoryFeed) Recent(_ context.Context, limit int) ([]models.FeedEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit <= 0 || limit > len(f.entries) {
		limit = len(f.entries)
	}

	out := make([]models.FeedEntry, limit)
	copy(out, f.entries[:limit])

	return out, nil
}

func (f *MemoryFeed) Close() error {
	return nil
}
