package broker

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "feed:scope:"

// Redis carries change notifications between API instances over pub/sub.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Publish(ctx context.Context, topic string) error {
	if err := r.client.Publish(ctx, channelPrefix+topic, "changed").Err(); err != nil {
		return fmt.Errorf("ошибка публикации изменения %s: %w", topic, err)
	}
	return nil
}

func (r *Redis) Subscribe(ctx context.Context, topic string) (<-chan struct{}, func(), error) {
	pubsub := r.client.Subscribe(ctx, channelPrefix+topic)

	// wait for the confirmation so no publish after this call is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("ошибка подписки на %s: %w", topic, err)
	}

	out := make(chan struct{}, 1)
	messages := pubsub.Channel()

	go func() {
		defer close(out)
		for range messages {
			notify(out)
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				log.Printf("Ошибка при отписке от %s: %v", topic, err)
			}
		})
	}

	return out, unsubscribe, nil
}
