// Package chainfeed bridges the chain event stream to the engine
// inbound: Kafka topic of raw chain callbacks, normalized and fanned out to
// both dispatchers; outbound: engine bus events republished for bot adapters
package chainfeed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"warden/internal/core/events"
	"warden/internal/core/normalize"
	perr "warden/internal/platform/errors"
	"warden/internal/platform/logger"
)

// Sink consumes one canonical event; both dispatchers satisfy this
type Sink interface {
	ProcessEvent(ctx context.Context, ev events.DomainEvent) error
}

// ConsumerConfig configures the inbound reader
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer reads raw chain callbacks and fans canonical events out to sinks
type Consumer struct {
	reader *kafka.Reader
	log    logger.Logger
	sinks  []namedSink
}

type namedSink struct {
	name string
	sink Sink
}

// NewConsumer constructs a Consumer
func NewConsumer(cfg ConsumerConfig, log logger.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, perr.InvalidArgf("chainfeed: brokers required")
	}
	if cfg.Topic == "" {
		return nil, perr.InvalidArgf("chainfeed: topic required")
	}
	if cfg.GroupID == "" {
		return nil, perr.InvalidArgf("chainfeed: group id required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	return &Consumer{
		reader: reader,
		log:    log.With().Str("component", "chainfeed").Logger(),
	}, nil
}

// AddSink registers a named consumer of canonical events
func (c *Consumer) AddSink(name string, s Sink) {
	c.sinks = append(c.sinks, namedSink{name: name, sink: s})
}

// Run consumes until ctx is canceled.
// Each event is handed to every sink concurrently: a failure in one sink
// never blocks or aborts the others, and a bad message never stops the loop
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error().Err(err).Msg("read failed")
			continue
		}

		var raw normalize.RawEvent
		if err := json.Unmarshal(msg.Value, &raw); err != nil {
			c.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("undecodable message dropped")
			continue
		}
		ev, err := normalize.Event(raw)
		if err != nil {
			c.log.Warn().Err(err).Str("tx_hash", raw.TxHash).Msg("malformed event dropped")
			continue
		}

		c.fanOut(ctx, ev)
	}
}

func (c *Consumer) fanOut(ctx context.Context, ev events.DomainEvent) {
	ctx = logger.WithEvent(ctx, ev.Chain.TxHash, ev.Domain)

	var wg sync.WaitGroup
	for _, ns := range c.sinks {
		wg.Add(1)
		go func(ns namedSink) {
			defer wg.Done()
			if err := ns.sink.ProcessEvent(ctx, ev); err != nil {
				c.log.Warn().
					Str("sink", ns.name).
					Str("tx_hash", ev.Chain.TxHash).
					Str("domain", ev.Domain).
					Err(err).
					Msg("event dropped by sink")
			}
		}(ns)
	}
	wg.Wait()
}

// Close releases the reader
func (c *Consumer) Close() error { return c.reader.Close() }
