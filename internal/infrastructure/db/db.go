package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kidpech/user_service/internal/config"
)

// Manager coordinates read/write connections.
type Manager struct {
	Write *sqlx.DB
	Read  *sqlx.DB
}

// DriverName maps the configured driver onto the registered database/sql name.
func DriverName(driver string) string {
	// sqlx driver name mapping: allow "postgres" in config but use the
	// compiled pgx stdlib driver which registers under "pgx".
	if driver == "postgres" {
		return "pgx"
	}
	return driver
}

// Connect establishes sqlx connections based on configuration.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	driverName := DriverName(cfg.Driver)

	write, err := sqlx.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	write.SetMaxOpenConns(cfg.MaxOpenConns)
	write.SetMaxIdleConns(cfg.MaxIdleConns)
	write.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := write.PingContext(ctx); err != nil {
		_ = write.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	mgr := &Manager{Write: write, Read: write}
	if cfg.ReadOnlyDSN != "" {
		read, err := sqlx.Open(driverName, cfg.ReadOnlyDSN)
		if err != nil {
			if logger != nil {
				logger.Warn("read-only db open failed", zap.Error(err))
			}
		} else {
			read.SetMaxOpenConns(cfg.MaxOpenConns)
			read.SetMaxIdleConns(cfg.MaxIdleConns)
			read.SetConnMaxLifetime(cfg.ConnMaxLifetime)
			if err := read.PingContext(ctx); err != nil {
				if logger != nil {
					logger.Warn("read-only db ping failed", zap.Error(err))
				}
				_ = read.Close()
			} else {
				mgr.Read = read
			}
		}
	}

	return mgr, nil
}

// Ping checks the write connection.
func (m *Manager) Ping(ctx context.Context) error {
	if m == nil || m.Write == nil {
		return fmt.Errorf("db not connected")
	}
	return m.Write.PingContext(ctx)
}

// Close closes all DB handles.
func (m *Manager) Close() error {
	if m == nil || m.Write == nil {
		return nil
	}
	if err := m.Write.Close(); err != nil {
		return err
	}
	if m.Read != nil && m.Read != m.Write {
		return m.Read.Close()
	}
	return nil
}
