package sdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/celerix-dev/celerix-grid/internal/api"
	"github.com/celerix-dev/celerix-grid/internal/engine"
	"github.com/celerix-dev/celerix-grid/internal/observability"
	"github.com/celerix-dev/celerix-grid/pkg/filter"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
	"github.com/celerix-dev/celerix-grid/pkg/sdk"
	"github.com/gin-gonic/gin"
)

func startService(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(observability.RequestID())
	h := &api.Handler{Store: engine.NewMemStore(engine.DefaultSeed())}
	h.Register(r.Group("/api"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string) *sdk.Client {
	t.Helper()
	c, err := sdk.NewClient(sdk.Config{
		BaseURL:      baseURL,
		Timeout:      2 * time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestClientCRUD(t *testing.T) {
	srv := startService(t)
	c := newClient(t, srv.URL+"/api")
	ctx := context.Background()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	records, err := c.List(ctx, filter.Spec{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	created, err := c.Create(ctx, schema.NewRecord{Name: "Ada", Email: "ada@example.com", Role: "Admin"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != 3 || created.LastModified == nil {
		t.Errorf("Unexpected created record: %+v", created)
	}

	updated, err := c.UpdateField(ctx, created.ID, "role", "User")
	if err != nil {
		t.Fatalf("UpdateField failed: %v", err)
	}
	if updated.Role != "User" || updated.Name != "Ada" {
		t.Errorf("Unexpected updated record: %+v", updated)
	}
	if !updated.LastModified.After(*created.LastModified) {
		t.Errorf("Expected lastModified to advance")
	}

	got, err := c.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Role != "User" {
		t.Errorf("Expected role User, got %q", got.Role)
	}

	admins, err := c.List(ctx, filter.Spec{Role: "admin"})
	if err != nil {
		t.Fatalf("filtered List failed: %v", err)
	}
	if len(admins) != 1 || admins[0].Name != "John Doe" {
		t.Errorf("Expected only John Doe as admin, got %+v", admins)
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, created.ID); !errors.Is(err, schema.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestClientMapsServiceErrors(t *testing.T) {
	srv := startService(t)
	c := newClient(t, srv.URL+"/api")
	ctx := context.Background()

	if err := c.Delete(ctx, 99); !errors.Is(err, schema.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := c.UpdateField(ctx, 1, "id", "5"); !errors.Is(err, schema.ErrInvalidField) {
		t.Errorf("Expected ErrInvalidField, got %v", err)
	}
	if _, err := c.UpdateField(ctx, 99, "id", "5"); !errors.Is(err, schema.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown id, got %v", err)
	}
	if _, err := c.Create(ctx, schema.NewRecord{Name: "x"}); !errors.Is(err, schema.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestClientSameErrorsAsEmbeddedStore(t *testing.T) {
	srv := startService(t)
	remote := newClient(t, srv.URL+"/api")
	embedded := engine.NewMemStore(engine.DefaultSeed())
	ctx := context.Background()

	for _, s := range []sdk.RecordStore{remote, embedded} {
		if _, err := s.Get(ctx, 42); !errors.Is(err, schema.ErrNotFound) {
			t.Errorf("%T: expected ErrNotFound, got %v", s, err)
		}
		if _, err := s.UpdateField(ctx, 2, "lastModified", "now"); !errors.Is(err, schema.ErrInvalidField) {
			t.Errorf("%T: expected ErrInvalidField, got %v", s, err)
		}
	}
}

func TestClientUnavailable(t *testing.T) {
	srv := startService(t)
	url := srv.URL + "/api"
	srv.Close()

	c := newClient(t, url)
	_, err := c.List(context.Background(), filter.Spec{})
	if !errors.Is(err, schema.ErrUpstreamUnavailable) {
		t.Fatalf("Expected ErrUpstreamUnavailable, got %v", err)
	}
	var upErr *sdk.UpstreamError
	if !errors.As(err, &upErr) || upErr.Op != "list" {
		t.Errorf("Expected *UpstreamError for list, got %T", err)
	}
}

func TestClientRetriesIdempotentCalls(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL+"/api")

	_, err := c.Get(context.Background(), 1)
	if !errors.Is(err, schema.ErrUpstreamUnavailable) {
		t.Fatalf("Expected ErrUpstreamUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 attempts for GET, got %d", got)
	}

	calls.Store(0)
	_, err = c.Create(context.Background(), schema.NewRecord{Name: "a", Email: "b", Role: "c"})
	if !errors.Is(err, schema.ErrUpstreamUnavailable) {
		t.Fatalf("Expected ErrUpstreamUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected a single attempt for POST, got %d", got)
	}
}

func TestClientRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"name":"John Doe","email":"john@example.com","role":"Admin"}`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL+"/api")
	rec, err := c.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Name != "John Doe" || rec.LastModified != nil {
		t.Errorf("Unexpected record: %+v", rec)
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := sdk.NewClient(sdk.Config{BaseURL: srv.URL + "/api", Timeout: 50 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	err = c.Delete(context.Background(), 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
	if !errors.Is(err, schema.ErrUpstreamUnavailable) {
		t.Errorf("Expected timeout to count as upstream failure, got %v", err)
	}
	var upErr *sdk.UpstreamError
	if !errors.As(err, &upErr) || !upErr.Timeout() {
		t.Errorf("Expected UpstreamError.Timeout to be true")
	}
}

func TestClientPropagatesRequestID(t *testing.T) {
	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get(observability.RequestIDHeader)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL+"/api")
	ctx := observability.WithRequestID(context.Background(), "req-123")
	if _, err := c.List(ctx, filter.Spec{}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got := <-seen; got != "req-123" {
		t.Errorf("Expected request id req-123, got %q", got)
	}
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	if _, err := sdk.NewClient(sdk.Config{BaseURL: "/api"}, nil); err == nil {
		t.Error("Expected error for URL without host")
	}
}

func TestNewFallsBackToEmbeddedStore(t *testing.T) {
	s, err := sdk.New(sdk.Config{}, engine.DefaultSeed(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := s.(*engine.MemStore); !ok {
		t.Fatalf("Expected embedded *engine.MemStore, got %T", s)
	}

	s, err = sdk.New(sdk.Config{BaseURL: "http://localhost:7002/api"}, nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := s.(*sdk.Client); !ok {
		t.Fatalf("Expected *sdk.Client, got %T", s)
	}
}
