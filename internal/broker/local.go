package broker

import (
	"context"
	"sync"
)

// Local fans change notifications out inside one process. It is used when
// no Redis URL is configured and in tests.
type Local struct {
	mu     sync.Mutex
	topics map[string]map[chan struct{}]struct{}
}

func NewLocal() *Local {
	return &Local{topics: make(map[string]map[chan struct{}]struct{})}
}

func (l *Local) Publish(ctx context.Context, topic string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ch := range l.topics[topic] {
		notify(ch)
	}
	return nil
}

func (l *Local) Subscribe(ctx context.Context, topic string) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)

	l.mu.Lock()
	subs, ok := l.topics[topic]
	if !ok {
		subs = make(map[chan struct{}]struct{})
		l.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	l.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()

			delete(l.topics[topic], ch)
			if len(l.topics[topic]) == 0 {
				delete(l.topics, topic)
			}
			close(ch)
		})
	}

	return ch, unsubscribe, nil
}

// notify never blocks: a pending notification already means "re-query".
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
