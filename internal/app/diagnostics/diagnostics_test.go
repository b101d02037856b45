package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterPublic(r.Group("/api/v1"))
	h.RegisterDebug(r.Group("/api/v1"))
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLogBufferKeepsMostRecent(t *testing.T) {
	b := NewLogBuffer(3)
	for i := 0; i < 5; i++ {
		b.Append(fmt.Sprintf("line %d", i))
	}

	snap := b.Snapshot()
	require.Equal(t, []string{"line 2", "line 3", "line 4"}, snap)

	snap[0] = "mutated"
	require.Equal(t, "line 2", b.Snapshot()[0])
}

func TestLogBufferPartialAndWrapped(t *testing.T) {
	b := NewLogBuffer(4)
	require.Empty(t, b.Snapshot())

	b.Append("a")
	b.Append("b")
	require.Equal(t, []string{"a", "b"}, b.Snapshot())

	for _, l := range []string{"c", "d", "e", "f", "g", "h", "i"} {
		b.Append(l)
	}
	require.Equal(t, []string{"f", "g", "h", "i"}, b.Snapshot())
}

func TestLogBufferDefaultLimit(t *testing.T) {
	b := NewLogBuffer(0)
	for i := 0; i < 150; i++ {
		b.Append("x")
	}

	require.Len(t, b.Snapshot(), 100)
}

func TestHealthAndReady(t *testing.T) {
	r := newRouter(NewHandler(NewLogBuffer(10), pingerFunc(func(context.Context) error { return nil }), nil))

	require.Equal(t, http.StatusOK, get(r, "/api/v1/health").Code)
	w := get(r, "/api/v1/ready")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ready"}`, w.Body.String())
}

func TestReadyReportsStoreFailure(t *testing.T) {
	r := newRouter(NewHandler(NewLogBuffer(10), pingerFunc(func(context.Context) error { return errors.New("down") }), nil))

	w := get(r, "/api/v1/ready")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDebugLogs(t *testing.T) {
	buf := NewLogBuffer(10)
	buf.Append("GET /api/v1/users -> 200")
	r := newRouter(NewHandler(buf, nil, nil))

	w := get(r, "/api/v1/debug/logs")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Logs []string `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, []string{"GET /api/v1/users -> 200"}, body.Logs)
}
