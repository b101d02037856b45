package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kidpech/user_service/internal/config"
)

// InitSentry configures sentry if DSN provided.
func InitSentry(cfg config.MonitoringConfig, app config.AppConfig) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Release:          app.Version,
		Environment:      app.Env,
		ServerName:       app.Name,
		TracesSampleRate: cfg.SentrySampleRate,
	})
}

// CaptureError forwards unexpected errors to sentry. It is a no-op until
// InitSentry has configured a client.
func CaptureError(err error) {
	if err == nil || sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.CaptureException(err)
}

// Flush ensures buffered events ship.
func Flush() {
	sentry.Flush(2 * time.Second)
}
