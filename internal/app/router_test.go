package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/kidpech/user_service/internal/app/diagnostics"
	"github.com/kidpech/user_service/internal/config"
	"github.com/kidpech/user_service/internal/domain/user"
	"github.com/kidpech/user_service/internal/infrastructure/memstore"
	"github.com/kidpech/user_service/internal/infrastructure/security"
)

func newTestEngine(t *testing.T, cfg *config.Config) (*gin.Engine, *memstore.UserRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo, err := memstore.NewUserRepository()
	require.NoError(t, err)
	logger := zap.NewNop()
	buffer := diagnostics.NewLogBuffer(20)
	svc := user.NewService(repo, security.NewBcryptHasher(bcrypt.MinCost), logger)
	return NewRouter(RouterDeps{
		Config:      cfg,
		UserHandler: user.NewHandler(svc, nil),
		Diagnostics: diagnostics.NewHandler(buffer, repo, logger),
		Logger:      logger,
		LogBuffer:   buffer,
	}), repo
}

func call(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterUserLifecycle(t *testing.T) {
	r, repo := newTestEngine(t, &config.Config{Monitoring: config.MonitoringConfig{PrometheusEnabled: true}})

	w := call(r, http.MethodPost, "/api/v1/users", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created user.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Passw0rd!")))

	w = call(r, http.MethodPost, "/api/v1/users", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "Passw0rd!",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = call(r, http.MethodDelete, "/api/v1/users/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = call(r, http.MethodGet, "/api/v1/users/search?active=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "alice")

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/ready", nil).Code)
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/metrics", nil).Code)
}

func TestRouterDebugLogsAreOptIn(t *testing.T) {
	off, _ := newTestEngine(t, &config.Config{})
	require.Equal(t, http.StatusNotFound, call(off, http.MethodGet, "/api/v1/debug/logs", nil).Code)
	require.Equal(t, http.StatusNotFound, call(off, http.MethodGet, "/api/v1/metrics", nil).Code)

	on, _ := newTestEngine(t, &config.Config{Diagnostics: config.DiagnosticsConfig{EnableDebugLogs: true}})
	call(on, http.MethodGet, "/api/v1/health", nil)
	w := call(on, http.MethodGet, "/api/v1/debug/logs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "/api/v1/health")
}

func TestServerShutsDownOnCancel(t *testing.T) {
	r, _ := newTestEngine(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	srv := &Server{Engine: r, ShutdownTimeout: time.Second}
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/api/v1/health", ln.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerWithoutEngine(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = (&Server{}).Serve(context.Background(), ln)

	require.Error(t, err)
}
