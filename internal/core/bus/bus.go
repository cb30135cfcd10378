// Package bus is a small in-process pub/sub used for engine-emitted events
// publish never blocks: a subscriber whose buffer is full loses the event
// and the drop is logged, which keeps slow consumers from stalling dispatch
package bus

import (
	"sync"

	"warden/internal/platform/logger"
)

// Topic names for engine events
const (
	// TopicAlert carries dispatched alert notifications
	TopicAlert = "alert"
	// TopicActionExecuted carries successful auto-action outcomes
	TopicActionExecuted = "auto_action_executed"
	// TopicActionFailed carries failed auto-action outcomes
	TopicActionFailed = "auto_action_failed"
)

// Message is a published engine event
type Message struct {
	Topic   string
	Payload any
}

// Bus fans messages out to per-topic subscribers
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]chan Message
	log  logger.Logger
}

// New constructs a Bus
func New(log logger.Logger) *Bus {
	return &Bus{
		subs: make(map[string][]chan Message),
		log:  log.With().Str("component", "bus").Logger(),
	}
}

// Subscribe registers a buffered subscriber for topic
// the returned cancel removes the subscription and closes the channel
func (b *Bus) Subscribe(topic string, buffer int) (<-chan Message, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Message, buffer)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[topic]
		for i, c := range list {
			if c == ch {
				b.subs[topic] = append(list[:i], list[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

// Publish delivers msg to every subscriber of topic without blocking
func (b *Bus) Publish(topic string, payload any) {
	msg := Message{Topic: topic, Payload: payload}

	b.mu.RLock()
	list := b.subs[topic]
	b.mu.RUnlock()

	for _, ch := range list {
		select {
		case ch <- msg:
		default:
			b.log.Warn().Str("topic", topic).Msg("subscriber buffer full, event dropped")
		}
	}
}
