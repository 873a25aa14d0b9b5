package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/josh-kwaku/bank-ledger/internal/domain"
)

// RedisPublisher sends each event as a JSON envelope on a pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisPublisher(ctx context.Context, url, channel string, logger *slog.Logger) (*RedisPublisher, error) {
	if url == "" || channel == "" {
		return nil, fmt.Errorf("NewRedisPublisher: url and channel are required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("NewRedisPublisher: invalid url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("NewRedisPublisher: ping: %w", err)
	}

	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger.With("component", "redis-publisher"),
	}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event domain.MovementEvent) error {
	body, err := encode(event)
	if err != nil {
		return fmt.Errorf("Publish: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, body).Result()
	if err != nil {
		return fmt.Errorf("Publish: %w", err)
	}

	p.logger.Debug("movement event published",
		"event_id", event.ID,
		"movement_id", event.MovementID,
		"channel", p.channel,
		"receivers", receivers,
	)
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
