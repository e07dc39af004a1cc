package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisPubSub struct {
	rdb *redis.Client
}

// NewRedis wraps an already-connected Redis client. The connection is
// injected so missing configuration fails at startup, not on first publish.
func NewRedis(rdb *redis.Client) PubSub {
	return &redisPubSub{rdb: rdb}
}

func (p *redisPubSub) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *redisPubSub) Subscribe(ctx context.Context, pattern string) (<-chan Message, error) {
	sub := p.rdb.PSubscribe(ctx, pattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", pattern, err)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				out <- Message{Topic: msg.Channel, Payload: []byte(msg.Payload)}
			}
		}
	}()
	return out, nil
}
