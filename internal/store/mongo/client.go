package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrKriegler/go-warranty/internal/platform/config"
)

const (
	maxRetries     = 5
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

type MongoClient struct {
	Client    *mongo.Client
	DB        *mongo.Database
	OpTimeout time.Duration
}

// NewClient connects to MongoDB, retrying with exponential backoff until
// the server answers a ping or ctx is cancelled.
func NewClient(ctx context.Context, cfg *config.Config) (*MongoClient, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetAppName("go-warranty")

	connectTimeout := time.Duration(cfg.MongoConnectTimeoutSec) * time.Second

	var lastErr error
	backoff := initialBackoff
	for attempt := 1; attempt <= maxRetries; attempt++ {
		client, err := connect(ctx, clientOpts, connectTimeout)
		if err == nil {
			return &MongoClient{
				Client:    client,
				DB:        client.Database(cfg.MongoDB),
				OpTimeout: time.Duration(cfg.OpTimeoutMs) * time.Millisecond,
			}, nil
		}
		lastErr = err
		if attempt == maxRetries {
			break
		}

		slog.Warn("mongo connect failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}

	return nil, fmt.Errorf("connect to mongo after %d attempts: %w", maxRetries, lastErr)
}

func connect(ctx context.Context, opts *options.ClientOptions, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Ping verifies connectivity (used by /readyz).
func (c *MongoClient) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx, nil)
}

// Close gracefully disconnects from MongoDB.
func (c *MongoClient) Close(ctx context.Context) error {
	return c.Client.Disconnect(ctx)
}
