package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kidpech/user_service/internal/app/diagnostics"
	"github.com/kidpech/user_service/internal/app/middleware"
	"github.com/kidpech/user_service/internal/config"
	"github.com/kidpech/user_service/internal/domain/user"
)

// RouterDeps aggregates HTTP dependencies.
type RouterDeps struct {
	Config      *config.Config
	UserHandler *user.Handler
	Diagnostics *diagnostics.Handler
	Logger      *zap.Logger
	LogBuffer   *diagnostics.LogBuffer
}

// NewRouter builds the gin engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if deps.Config != nil {
		r.Use(middleware.CORS(deps.Config.Cors))
	}
	r.Use(middleware.RequestLogger(deps.Logger, deps.LogBuffer))

	api := r.Group("/api/v1")
	if deps.Diagnostics != nil {
		deps.Diagnostics.RegisterPublic(api)
		if deps.Config != nil && deps.Config.Diagnostics.EnableDebugLogs {
			deps.Diagnostics.RegisterDebug(api)
		}
	}

	if deps.Config == nil || deps.Config.Monitoring.PrometheusEnabled {
		api.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	users := api.Group("", middleware.UserOperationMetrics())
	deps.UserHandler.RegisterRoutes(users)

	return r
}
