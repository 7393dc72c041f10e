package tasks

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmind-backend/internal/models"
)

func newTestServer(t *testing.T, store Store, sg Suggester) *httptest.Server {
	t.Helper()
	svc := newTestService(store, &stubClassifier{result: models.FallbackEnrichment()}, sg)
	mux := http.NewServeMux()
	Routes(mux, svc)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHTTP_CreateListGet(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore(), &stubSuggester{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", map[string]any{
		"title":       "Finish project deadline",
		"description": "urgent",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[CreateTaskResponse](t, resp)
	assert.Equal(t, "Task created successfully!", created.Message)
	assert.NotZero(t, created.ID)
	assert.Equal(t, created.ID, created.Task.ID)
	assert.Equal(t, models.PriorityMedium, created.Task.Priority)
	assert.Equal(t, models.StatusPending, created.Task.Status)
	assert.Equal(t, "general", created.Task.Category)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[[]models.Task](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Finish project deadline", list[0].Title)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks/"+strconv.FormatInt(created.ID, 10), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[models.Task](t, resp)
	assert.Equal(t, "urgent", models.StringValue(got.Description))
}

func TestHTTP_ListEmptyIsArray(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore(), &stubSuggester{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/tasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw))
}

func TestHTTP_CreateValidation(t *testing.T) {
	store := NewMemoryStore()
	srv := newTestServer(t, store, &stubSuggester{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", map[string]any{"title": "  "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Title is required!", decodeBody[ErrorResponse](t, resp).Error)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks", "{not json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid JSON!", decodeBody[ErrorResponse](t, resp).Error)

	assert.Zero(t, store.Len())
}

func TestHTTP_CreateWithClientID(t *testing.T) {
	store := NewMemoryStore()
	srv := newTestServer(t, store, &stubSuggester{})
	body := map[string]any{"title": "Call mom", "client_id": "c0ffee00-0000-4000-8000-000000000002"}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decodeBody[CreateTaskResponse](t, resp)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tasks", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decodeBody[CreateTaskResponse](t, resp)
	assert.Equal(t, "Task already exists!", second.Message)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.Len())
}

func TestHTTP_CreateStoreFailureIsOpaque(t *testing.T) {
	store := &countingStore{MemoryStore: NewMemoryStore(), failAll: true}
	srv := newTestServer(t, store, &stubSuggester{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", map[string]any{"title": "x"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to create task!", decodeBody[ErrorResponse](t, resp).Error)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "DB error!", decodeBody[ErrorResponse](t, resp).Error)
}

func TestHTTP_UpdateAndDelete(t *testing.T) {
	store := NewMemoryStore()
	srv := newTestServer(t, store, &stubSuggester{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", map[string]any{"title": "Read book"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := strconv.FormatInt(decodeBody[CreateTaskResponse](t, resp).ID, 10)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/tasks/"+id, map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upd := decodeBody[UpdateTaskResponse](t, resp)
	assert.Equal(t, "Task updated successfully!", upd.Message)
	assert.EqualValues(t, 1, upd.Changes)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks/"+id, nil)
	got := decodeBody[models.Task](t, resp)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, "Read book", got.Title)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/tasks/999", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Task not found!", decodeBody[ErrorResponse](t, resp).Error)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, store.Len())

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Task deleted successfully!", decodeBody[MessageResponse](t, resp).Message)
	assert.Zero(t, store.Len())

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tasks/"+id, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_InvalidID(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore(), &stubSuggester{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		resp := doJSON(t, method, srv.URL+"/api/tasks/abc", map[string]any{})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, method)
		assert.Equal(t, "Invalid task id!", decodeBody[ErrorResponse](t, resp).Error)
	}
}

func TestHTTP_Suggest(t *testing.T) {
	store := NewMemoryStore()
	srv := newTestServer(t, store, &stubSuggester{
		sug: models.Suggestion{Title: "Buy groceries", Description: "milk, eggs"},
	})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/ai-suggest", map[string]any{"query": "out of milk"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sug := decodeBody[models.Suggestion](t, resp)
	assert.Equal(t, "Buy groceries", sug.Title)
	assert.Zero(t, store.Len())

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/ai-suggest", map[string]any{"query": ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Query is required!", decodeBody[ErrorResponse](t, resp).Error)

	broken := newTestServer(t, NewMemoryStore(), &stubSuggester{err: errors.New("connection refused")})
	resp = doJSON(t, http.MethodPost, broken.URL+"/api/ai-suggest", map[string]any{"query": "x"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "AI suggestion failed!", decodeBody[ErrorResponse](t, resp).Error)
}

func TestHTTP_Optimize(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore(), &stubSuggester{})
	for _, title := range []string{"a", "b"} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", map[string]any{"title": title})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/optimize", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeBody[OptimizeResponse](t, resp)
	assert.Equal(t, "Optimized 2 tasks!", out.Message)
	assert.Equal(t, 2, out.Count)
	assert.Zero(t, out.Failed)
}

func TestHTTP_HealthAndAlive(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore(), &stubSuggester{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", buf.String())

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/test", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "Server alive!", body["message"])
	assert.NotEmpty(t, body["time"])
}

func TestAliveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	AliveHandler(rec, httptest.NewRequest(http.MethodGet, "/api/test", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Server alive!", body["message"])
}
