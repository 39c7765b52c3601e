package testutil

import (
	"context"
	"sync"

	"github.com/mediashare/backend/pkg/pubsub"
)

// MockPublisher records every published pack.
type MockPublisher struct {
	mu       sync.Mutex
	Messages map[string][]*pubsub.Pack

	PublishFunc func(ctx context.Context, topic string, pack *pubsub.Pack) error
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Messages == nil {
		m.Messages = map[string][]*pubsub.Pack{}
	}

	m.Messages[topic] = append(m.Messages[topic], pack)
	return nil
}

func (m *MockPublisher) Count(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Messages[topic])
}
