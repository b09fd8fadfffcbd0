// Package cmd wires shared infrastructure for the vigil binaries: store and
// feed selection from connection URLs.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nexuslab/vigil/pkg/persistence"
	"github.com/nexuslab/vigil/pkg/persistence/file"
	"github.com/nexuslab/vigil/pkg/persistence/postgresql"
)

// NewStore selects the store implementation from the database URL scheme:
// postgres URLs get the PostgreSQL store, anything else is treated as a file
// root.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewStore(ctx, logger, databaseURL)
	default:
		return file.NewStore(strings.TrimPrefix(databaseURL, "file://"))
	}
}
