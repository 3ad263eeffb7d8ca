package testutil

import (
	"context"
	"sync"

	"github.com/wtfpad/backend/pkg/pubsub"
)

type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mu        sync.Mutex
	Published map[string][]*pubsub.Pack
}

// Publish records the pack by topic unless PublishFunc is set.
func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Published == nil {
		m.Published = make(map[string][]*pubsub.Pack)
	}
	m.Published[topic] = append(m.Published[topic], pack)

	return nil
}

func (m *MockPublisher) Count(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published[topic])
}
