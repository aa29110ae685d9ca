package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/celerix-dev/celerix-grid/internal/observability"
	"github.com/celerix-dev/celerix-grid/pkg/filter"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
	"go.uber.org/zap"
)

// MemStore is the thread-safe record store.
// One RWMutex guards the records, their insertion order and the id counter, so
// mutations are serialized and readers never see a half-applied update.
type MemStore struct {
	mu      sync.RWMutex
	records map[int64]*schema.Record
	order   []int64
	nextID  int64

	now    func() time.Time
	logger *zap.Logger
}

// Option configures a MemStore.
type Option func(*MemStore)

// WithClock replaces time.Now as the source of LastModified stamps.
func WithClock(now func() time.Time) Option {
	return func(m *MemStore) { m.now = now }
}

// WithLogger sets the logger used for mutation events.
func WithLogger(l *zap.Logger) Option {
	return func(m *MemStore) { m.logger = l }
}

// NewMemStore initializes a store from seed records.
// Seeds keep their ids when set; seeds with a zero id are numbered after the highest seeded id.
// A seed whose id repeats an earlier one is dropped.
func NewMemStore(seed []schema.Record, opts ...Option) *MemStore {
	m := &MemStore{
		records: make(map[int64]*schema.Record, len(seed)),
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	var maxID int64
	for _, r := range seed {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	m.nextID = maxID + 1

	for _, r := range seed {
		if r.ID <= 0 {
			r.ID = m.nextID
			m.nextID++
		}
		if _, dup := m.records[r.ID]; dup {
			m.logger.Warn("dropping seed record with duplicate id", zap.Int64("id", r.ID))
			continue
		}
		m.records[r.ID] = &r
		m.order = append(m.order, r.ID)
	}

	observability.SetStoredRecords(len(m.order))
	return m
}

// Len returns the number of stored records.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// --- Store implementation ---

func (m *MemStore) List(ctx context.Context, f filter.Spec) ([]schema.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]schema.Record, 0, len(m.order))
	for _, id := range m.order {
		r := m.records[id]
		if f.Match(*r) {
			out = append(out, copyRecord(r))
		}
	}
	return out, nil
}

func (m *MemStore) Get(ctx context.Context, id int64) (schema.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return schema.Record{}, notFound(id)
	}
	return copyRecord(r), nil
}

func (m *MemStore) Create(ctx context.Context, in schema.NewRecord) (schema.Record, error) {
	if err := in.Validate(); err != nil {
		return schema.Record{}, err
	}

	m.mu.Lock()
	stamp := m.now()
	r := &schema.Record{
		ID:           m.nextID,
		Name:         in.Name,
		Email:        in.Email,
		Role:         in.Role,
		LastModified: &stamp,
	}
	m.nextID++
	m.records[r.ID] = r
	m.order = append(m.order, r.ID)
	count := len(m.order)
	out := copyRecord(r)
	m.mu.Unlock()

	observability.SetStoredRecords(count)
	m.logger.Debug("record created", zap.Int64("id", out.ID))
	return out, nil
}

func (m *MemStore) UpdateField(ctx context.Context, id int64, field, value string) (schema.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[id]
	if !ok {
		return schema.Record{}, notFound(id)
	}
	f, err := schema.ParseField(field)
	if err != nil {
		return schema.Record{}, err
	}

	if err := r.Set(f, value); err != nil {
		return schema.Record{}, err
	}
	r.LastModified = m.nextStamp(r.LastModified)

	m.logger.Debug("record field updated", zap.Int64("id", id), zap.String("field", field))
	return copyRecord(r), nil
}

func (m *MemStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	if _, ok := m.records[id]; !ok {
		m.mu.Unlock()
		return notFound(id)
	}
	delete(m.records, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	count := len(m.order)
	m.mu.Unlock()

	observability.SetStoredRecords(count)
	m.logger.Debug("record deleted", zap.Int64("id", id))
	return nil
}

// nextStamp returns the current time, nudged forward when the clock has not moved past prev.
// It MUST be called while holding m.mu.Lock.
func (m *MemStore) nextStamp(prev *time.Time) *time.Time {
	stamp := m.now()
	if prev != nil && !stamp.After(*prev) {
		stamp = prev.Add(time.Nanosecond)
	}
	return &stamp
}

// copyRecord detaches a record from store-owned memory.
func copyRecord(r *schema.Record) schema.Record {
	out := *r
	if r.LastModified != nil {
		ts := *r.LastModified
		out.LastModified = &ts
	}
	return out
}

func notFound(id int64) error {
	return fmt.Errorf("%w: id %d", schema.ErrNotFound, id)
}
