package engine

import (
	"context"
	"fmt"

	"github.com/celerix-dev/celerix-grid/pkg/filter"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
)

// Lister is the read half of Store needed by Migrate.
type Lister interface {
	List(ctx context.Context, f filter.Spec) ([]schema.Record, error)
}

// Creator is the write half of Store needed by Migrate.
type Creator interface {
	Create(ctx context.Context, in schema.NewRecord) (schema.Record, error)
}

// Migrate copies every record from src into dst and returns how many were created.
// This works for:
// - Seed file -> Remote (loading demo data into a running service)
// - Remote -> Embedded (an offline copy)
//
// dst assigns its own ids, so source ids are not preserved. Records are copied in
// source insertion order, which keeps relative ordering intact.
func Migrate(ctx context.Context, src Lister, dst Creator) (int, error) {
	records, err := src.List(ctx, filter.Spec{})
	if err != nil {
		return 0, fmt.Errorf("failed to list source records: %w", err)
	}

	for i, r := range records {
		_, err := dst.Create(ctx, schema.NewRecord{Name: r.Name, Email: r.Email, Role: r.Role})
		if err != nil {
			return i, fmt.Errorf("failed to create record %d in destination: %w", r.ID, err)
		}
	}
	return len(records), nil
}
