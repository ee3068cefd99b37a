package marketdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans events out over Redis pub/sub. Subscribers attach to
// the channels named by Event.Channel.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(url string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisPublisher{client: redis.NewClient(opt)}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Stream(), err)
	}
	if err := p.client.Publish(ctx, event.Channel(), payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", event.Channel(), err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
