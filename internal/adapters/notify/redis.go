package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nextask/core/internal/infrastructure/config"
	"github.com/nextask/core/internal/ports"
)

// RedisNotifier fans change signals out across instances over Redis
// pub/sub. The message body is ignored by subscribers; receipt alone
// triggers a snapshot re-read.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier connects to Redis and verifies the connection
func NewRedisNotifier(cfg config.RedisConfig) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisNotifier{client: client}, nil
}

var _ ports.ChangeNotifier = (*RedisNotifier)(nil)

func channelFor(ownerID uuid.UUID) string {
	return "nextask:tasks:changed:" + ownerID.String()
}

func (n *RedisNotifier) Notify(ctx context.Context, ownerID uuid.UUID) error {
	if err := n.client.Publish(ctx, channelFor(ownerID), "1").Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context, ownerID uuid.UUID) (<-chan struct{}, func(), error) {
	pubsub := n.client.Subscribe(ctx, channelFor(ownerID))

	// Force the subscription onto the wire before the first snapshot is
	// read, so no change can slip between them.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to changes: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range pubsub.Channel() {
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	stop := func() {
		// Teardown failures are not user-visible.
		_ = pubsub.Close()
	}

	return out, stop, nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
