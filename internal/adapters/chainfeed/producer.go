package chainfeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"warden/internal/core/bus"
	perr "warden/internal/platform/errors"
	"warden/internal/platform/logger"
)

const writeTimeout = 10 * time.Second

// ProducerConfig configures the outbound writer
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// Producer republishes engine bus events to an outbound topic so bot
// adapters can consume them off-process
type Producer struct {
	writer *kafka.Writer
	log    logger.Logger
}

// NewProducer constructs a Producer
func NewProducer(cfg ProducerConfig, log logger.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, perr.InvalidArgf("chainfeed: brokers required")
	}
	if cfg.Topic == "" {
		return nil, perr.InvalidArgf("chainfeed: topic required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{
		writer: writer,
		log:    log.With().Str("component", "chainfeed-out").Logger(),
	}, nil
}

// Bridge subscribes to the engine bus topics and forwards each message
// until ctx is canceled; messages are keyed by topic
func (p *Producer) Bridge(ctx context.Context, b *bus.Bus) error {
	topics := []string{bus.TopicAlert, bus.TopicActionExecuted, bus.TopicActionFailed}
	merged := make(chan bus.Message, 64)

	for _, topic := range topics {
		ch, cancel := b.Subscribe(topic, 64)
		defer cancel()
		go func() {
			for msg := range ch {
				select {
				case merged <- msg:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-merged:
			p.forward(ctx, msg)
		}
	}
}

func (p *Producer) forward(ctx context.Context, msg bus.Message) {
	value, err := json.Marshal(msg.Payload)
	if err != nil {
		p.log.Warn().Str("topic", msg.Topic).Err(err).Msg("unencodable payload dropped")
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Topic),
		Value: value,
	})
	if err != nil {
		p.log.Warn().Str("topic", msg.Topic).Err(err).Msg("outbound publish failed")
	}
}

// Close releases the writer
func (p *Producer) Close() error { return p.writer.Close() }
