package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/celerix-dev/celerix-grid/internal/apierrors"
	"github.com/celerix-dev/celerix-grid/internal/engine"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter() (*gin.Engine, *engine.MemStore) {
	gin.SetMode(gin.TestMode)
	seed := append(engine.DefaultSeed(), schema.Record{ID: 3, Name: "Jack Smith", Email: "jack@example.com", Role: "User"})
	store := engine.NewMemStore(seed)
	h := &Handler{Store: store}
	r := gin.New()
	h.Register(r.Group("/api"))
	return r, store
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		buf = bytes.NewBuffer(raw)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorResponse {
	t.Helper()
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRecord(t *testing.T) {
	r, _ := setupTestRouter()

	w := do(r, "GET", "/api/records/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var rec schema.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, "John Doe", rec.Name)
}

func TestGetRecordNotFound(t *testing.T) {
	r, _ := setupTestRouter()

	w := do(r, "GET", "/api/records/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apierrors.ErrorCodeNotFound, decodeError(t, w).Code)

	w = do(r, "GET", "/api/records/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRecord(t *testing.T) {
	r, _ := setupTestRouter()

	w := do(r, "POST", "/api/records", gin.H{"name": "New Employee", "email": "new@example.com", "role": "User"})
	assert.Equal(t, http.StatusOK, w.Code)

	var rec schema.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, int64(4), rec.ID)
	assert.NotNil(t, rec.LastModified)
	assert.Contains(t, w.Body.String(), `"lastModified"`)
}

func TestCreateRecordValidation(t *testing.T) {
	r, _ := setupTestRouter()

	w := do(r, "POST", "/api/records", gin.H{"name": "Nobody"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrorCodeValidation, decodeError(t, w).Code)

	w = do(r, "POST", "/api/records", "invalid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRecord(t *testing.T) {
	r, store := setupTestRouter()

	w := do(r, "PUT", "/api/records/1", gin.H{"field": "name", "value": "Updated Name"})
	assert.Equal(t, http.StatusOK, w.Code)

	var rec schema.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "Updated Name", rec.Name)
	assert.Equal(t, "john@example.com", rec.Email)

	got, err := store.Get(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", got.Name)
}

func TestUpdateRecordErrors(t *testing.T) {
	r, store := setupTestRouter()

	w := do(r, "PUT", "/api/records/42", gin.H{"field": "name", "value": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, "PUT", "/api/records/1", gin.H{"field": "id", "value": "7"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apierrors.ErrorCodeInvalidField, decodeError(t, w).Code)

	w = do(r, "PUT", "/api/records/1", gin.H{"field": "name"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "value is required")

	// Query-string updates are not part of the contract.
	w = do(r, "PUT", "/api/records/1?field=name&value=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, err := store.Get(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got.Name)
}

func TestUpdateRecordAcceptsEmptyValue(t *testing.T) {
	r, _ := setupTestRouter()

	w := do(r, "PUT", "/api/records/2", gin.H{"field": "role", "value": ""})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteRecord(t *testing.T) {
	r, _ := setupTestRouter()

	w := do(r, "DELETE", "/api/records/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())

	w = do(r, "DELETE", "/api/records/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, "GET", "/api/records/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRecords(t *testing.T) {
	r, _ := setupTestRouter()

	count := func(path string) int {
		w := do(r, "GET", path, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var records []schema.Record
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
		return len(records)
	}

	assert.Equal(t, 3, count("/api/records"))
	assert.Equal(t, 1, count("/api/records?name=John"))
	assert.Equal(t, 1, count("/api/records?name=john"))
	assert.Equal(t, 1, count("/api/records?name=jOhN"))
	assert.Equal(t, 1, count("/api/records?email=jane@example.com"))
	assert.Equal(t, 2, count("/api/records?role=User"))
	assert.Equal(t, 0, count("/api/records?role=Admin&email=jane@example.com"))
	assert.Equal(t, 1, count("/api/records?role=User&name=Jack"))
}

func TestHealth(t *testing.T) {
	r, _ := setupTestRouter()

	w := do(r, "GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
