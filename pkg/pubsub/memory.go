package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"
)

type memorySub struct {
	pattern string
	ch      chan Message
}

// Memory is an in-process PubSub used in tests and single-node setups.
type Memory struct {
	mu   sync.Mutex
	subs []*memorySub
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Publish(_ context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if ok, _ := path.Match(s.pattern, topic); !ok {
			continue
		}
		select {
		case s.ch <- Message{Topic: topic, Payload: data}:
		default:
			// slow subscriber drops the event; live updates are best-effort
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, pattern string) (<-chan Message, error) {
	s := &memorySub{pattern: pattern, ch: make(chan Message, 16)}

	m.mu.Lock()
	m.subs = append(m.subs, s)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		for i, cur := range m.subs {
			if cur == s {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
		close(s.ch)
	}()
	return s.ch, nil
}
