package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryBus is an in-process Bus for tests. Publish records and enqueues
// the message; Drain delivers queued messages in order, one per subscribed
// group, mirroring the asynchronous leg of a real broker deterministically.
type MemoryBus struct {
	mu        sync.Mutex
	subs      []*memorySub
	onFailure FailureHook
	failNext  error
	queue     []delivery
	published map[string][][]byte
}

type delivery struct {
	topic   string
	payload []byte
}

type memorySub struct {
	group   string
	topics  map[string]bool
	handler Handler
	ctx     context.Context
}

// NewMemoryBus creates an empty in-memory bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{published: make(map[string][][]byte)}
}

// SetFailureHook replaces the default (silent) handler failure policy.
func (m *MemoryBus) SetFailureHook(hook FailureHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFailure = hook
}

// FailNextPublish makes the next Publish return err, simulating a broker
// outage.
func (m *MemoryBus) FailNextPublish(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// Publish serializes v, records it, and enqueues it for Drain. The caller
// returns before any handler runs, like a real append to a partitioned log.
func (m *MemoryBus) Publish(ctx context.Context, topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for topic %s: %w", topic, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.published[topic] = append(m.published[topic], payload)
	m.queue = append(m.queue, delivery{topic: topic, payload: payload})
	return nil
}

// Drain dispatches queued messages until the queue is empty, including
// messages published by handlers during the drain. Each message goes to
// every subscribed group whose topic set contains it, once per group.
// Handler errors go to the failure hook; the message stays consumed.
func (m *MemoryBus) Drain() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		d := m.queue[0]
		m.queue = m.queue[1:]
		subs := make([]*memorySub, len(m.subs))
		copy(subs, m.subs)
		hook := m.onFailure
		m.mu.Unlock()

		seen := make(map[string]bool)
		for _, sub := range subs {
			if !sub.topics[d.topic] || seen[sub.group] {
				continue
			}
			seen[sub.group] = true
			if err := sub.handler(sub.ctx, d.topic, d.payload); err != nil && hook != nil {
				hook(d.topic, d.payload, err)
			}
		}
	}
}

// Subscribe registers the handler and blocks until ctx is cancelled.
func (m *MemoryBus) Subscribe(ctx context.Context, group string, topics []string, handler Handler) error {
	m.register(ctx, group, topics, handler)
	<-ctx.Done()
	return nil
}

// Register is Subscribe without blocking, for tests that drive Drain
// directly.
func (m *MemoryBus) Register(group string, topics []string, handler Handler) {
	m.register(context.Background(), group, topics, handler)
}

func (m *MemoryBus) register(ctx context.Context, group string, topics []string, handler Handler) {
	topicSet := make(map[string]bool, len(topics))
	for _, t := range topics {
		topicSet[t] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, &memorySub{group: group, topics: topicSet, handler: handler, ctx: ctx})
}

// Published returns the payloads published to topic, in order.
func (m *MemoryBus) Published(topic string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.published[topic]))
	copy(out, m.published[topic])
	return out
}

// Close is a no-op.
func (m *MemoryBus) Close() error { return nil }
