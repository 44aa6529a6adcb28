package logward

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLogsRequest(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := Middleware(NewTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	records := bufferRecords(t, &buf)
	require.Len(t, records, 2)

	incoming := records[0]
	assert.Equal(t, "incoming request", incoming["event"])
	assert.Equal(t, "debug", incoming["level"])
	assert.Equal(t, "GET", incoming["http_method"])
	assert.Equal(t, "/users", incoming["http_path"])
	assert.Equal(t, "req-123", incoming["request_id"])

	completed := records[1]
	assert.Equal(t, "http request completed", completed["event"])
	assert.Equal(t, "info", completed["level"])
	assert.Equal(t, float64(200), completed["http_status_code"])
	assert.Equal(t, float64(5), completed["response_bytes"])
	assert.Equal(t, "req-123", completed["request_id"])
	assert.Contains(t, completed, "duration_ms")
}

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := Middleware(NewTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The handler sees the same ID through the request context.
		assert.Len(t, RequestIDFromContext(r.Context()), 36)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	echoed := rec.Header().Get(RequestIDHeader)
	assert.Len(t, echoed, 36)

	records := bufferRecords(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, echoed, records[0]["request_id"])
	assert.Equal(t, echoed, records[1]["request_id"])
}

func TestMiddlewareContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := Middleware(NewTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LoggerFromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items", nil))

	records := bufferRecords(t, &buf)
	require.Len(t, records, 3)
	assert.Equal(t, "inside handler", records[1]["event"])
	assert.NotEmpty(t, records[1]["request_id"])
	assert.Equal(t, float64(201), records[2]["http_status_code"])
}

func TestMiddlewareErrorStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"server error", http.StatusInternalServerError, "error"},
		{"client error", http.StatusNotFound, "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := Middleware(NewTestLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

			records := bufferRecords(t, &buf)
			require.Len(t, records, 2)
			assert.Equal(t, tt.wantLevel, records[1]["level"])
			assert.Equal(t, float64(tt.status), records[1]["http_status_code"])
		})
	}
}
