package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/kidpech/user_service/internal/infrastructure/db/migrations"
)

// gooseUp is a seam for testing goose.UpContext.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded schema for driver ("postgres" or "mysql").
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	switch driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("no migrations for driver %s", driver)
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUp(ctx, db, driver); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
