package diagnostics

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidpech/user_service/pkg/response"
)

// Pinger is the readiness dependency, typically the active record store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler exposes health + debug endpoints.
type Handler struct {
	buffer *LogBuffer
	store  Pinger
	logger *zap.Logger
}

// NewHandler returns handler. store may be nil, in which case /ready
// always succeeds.
func NewHandler(buffer *LogBuffer, store Pinger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{buffer: buffer, store: store, logger: logger}
}

// RegisterPublic attaches the liveness and readiness endpoints.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
	rg.GET("/ready", h.ready)
}

// RegisterDebug attaches the recent request log.
func (h *Handler) RegisterDebug(rg *gin.RouterGroup) {
	rg.GET("/debug/logs", h.logs)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ready(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			response.ServiceUnavailable(c, "record store unavailable")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handler) logs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"logs": h.buffer.Snapshot()})
}
