package pubsub

import (
	"context"
	"time"
)

// Pack is a message travelling through a topic.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}

type SubscribeHandler func(ctx context.Context, topic string, pack *Pack, t time.Time)

type Subscriber interface {
	// Subscribe starts consuming in background and returns once the consumer
	// joined its group.
	Subscribe(ctx context.Context)
	Stop(ctx context.Context) error
}
