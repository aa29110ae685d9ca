// Package filter evaluates per-field substring filters against records.
//
// Filters combine conjunctively: a record matches only when every present filter matches.
// An empty filter value is treated as absent.
package filter

import (
	"net/url"
	"strings"

	"github.com/celerix-dev/celerix-grid/pkg/schema"
)

// FrontendPrefix is the query-parameter prefix used by the grid's filter inputs.
const FrontendPrefix = "filter_"

// Spec holds an optional case-insensitive substring per editable field.
type Spec struct {
	Name  string
	Email string
	Role  string
}

// IsZero reports whether no filter is present.
func (s Spec) IsZero() bool {
	return s.Name == "" && s.Email == "" && s.Role == ""
}

// Get returns the filter value for field f.
func (s Spec) Get(f schema.Field) string {
	switch f {
	case schema.FieldName:
		return s.Name
	case schema.FieldEmail:
		return s.Email
	case schema.FieldRole:
		return s.Role
	}
	return ""
}

// Match reports whether r satisfies every present filter in s.
func (s Spec) Match(r schema.Record) bool {
	for _, f := range schema.EditableFields {
		want := s.Get(f)
		if want == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Value(f)), strings.ToLower(want)) {
			return false
		}
	}
	return true
}

// Apply returns the records matching s, preserving their order.
func Apply(records []schema.Record, s Spec) []schema.Record {
	out := make([]schema.Record, 0, len(records))
	for _, r := range records {
		if s.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// FromQuery reads a Spec from query parameters named prefix+field.
func FromQuery(q url.Values, prefix string) Spec {
	return Spec{
		Name:  q.Get(prefix + string(schema.FieldName)),
		Email: q.Get(prefix + string(schema.FieldEmail)),
		Role:  q.Get(prefix + string(schema.FieldRole)),
	}
}

// Query encodes the present filters as query parameters named prefix+field.
func (s Spec) Query(prefix string) url.Values {
	q := url.Values{}
	for _, f := range schema.EditableFields {
		if v := s.Get(f); v != "" {
			q.Set(prefix+string(f), v)
		}
	}
	return q
}
