// Package engine implements the authoritative in-memory record store.
package engine

import (
	"context"

	"github.com/celerix-dev/celerix-grid/pkg/filter"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
)

// Store is the record CRUD contract. Both MemStore and the remote sdk.Client satisfy it.
//
// Errors are reported with the sentinels in pkg/schema: ErrNotFound for unknown ids,
// ErrInvalidField for updates outside schema.EditableFields and ErrValidation for
// malformed input.
type Store interface {
	// List returns the records matching f in insertion order. A zero Spec returns every record.
	List(ctx context.Context, f filter.Spec) ([]schema.Record, error)
	// Get returns the record with the given id.
	Get(ctx context.Context, id int64) (schema.Record, error)
	// Create assigns the next id, stamps LastModified and stores the record.
	Create(ctx context.Context, in schema.NewRecord) (schema.Record, error)
	// UpdateField overwrites one editable field and refreshes LastModified.
	UpdateField(ctx context.Context, id int64, field, value string) (schema.Record, error)
	// Delete removes the record irrevocably. Its id is never reassigned.
	Delete(ctx context.Context, id int64) error
}
