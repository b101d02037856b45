// Package mongodb provides the MongoDB-backed user record store.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/kidpech/user_service/internal/config"
)

// Client wraps the driver client together with the configured database.
type Client struct {
	Mongo *mongo.Client
	DB    *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	if logger != nil {
		logger.Info("connected to mongodb", zap.String("database", cfg.Database))
	}
	return &Client{Mongo: cli, DB: cli.Database(cfg.Database)}, nil
}

// Ping checks the primary.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.Mongo == nil {
		return fmt.Errorf("mongo not connected")
	}
	return c.Mongo.Ping(ctx, nil)
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.Mongo == nil {
		return nil
	}
	return c.Mongo.Disconnect(ctx)
}
