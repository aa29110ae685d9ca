package sdk

import (
	"context"

	"github.com/celerix-dev/celerix-grid/pkg/filter"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
)

// --- Functional Interfaces (Interface Segregation) ---

// RecordReader defines the read operations of the record store.
type RecordReader interface {
	List(ctx context.Context, f filter.Spec) ([]schema.Record, error)
	Get(ctx context.Context, id int64) (schema.Record, error)
}

// RecordWriter defines the mutating operations of the record store.
type RecordWriter interface {
	Create(ctx context.Context, in schema.NewRecord) (schema.Record, error)
	UpdateField(ctx context.Context, id int64, field, value string) (schema.Record, error)
	Delete(ctx context.Context, id int64) error
}

// RecordStore is the full CRUD contract, satisfied by both the remote Client and the embedded engine.MemStore.
type RecordStore interface {
	RecordReader
	RecordWriter
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
