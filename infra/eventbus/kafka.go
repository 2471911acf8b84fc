package eventbus

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaEventBusConfig holds configuration for the Kafka event bus.
type KafkaEventBusConfig struct {
	Topic        string
	GroupID      string
	WriteTimeout time.Duration
	SASLUsername string
	SASLPassword string
	TLSEnabled   bool
}

// DefaultKafkaEventBusConfig returns default configuration for KafkaEventBus.
func DefaultKafkaEventBusConfig() *KafkaEventBusConfig {
	return &KafkaEventBusConfig{
		Topic:        "atm.ledger.events",
		GroupID:      "atm",
		WriteTimeout: 5 * time.Second,
	}
}

// KafkaEventBus publishes ledger events to a single Kafka topic. Messages are keyed by
// event type and carry the JSON envelope used by every remote bus.
type KafkaEventBus struct {
	brokers []string
	writer  *kafka.Writer
	dialer  *kafka.Dialer
	config  *KafkaEventBusConfig
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	handlersMtx sync.RWMutex
	handlers    map[events.EventType][]eventbus.HandlerFunc
	readerOnce  sync.Once
	reader      *kafka.Reader
}

// NewWithKafka creates a new Kafka-backed event bus.
// brokers: Comma-separated brokers list (e.g. "localhost:9092,localhost:9093").
func NewWithKafka(brokers string, logger *slog.Logger, config *KafkaEventBusConfig) (*KafkaEventBus, error) {
	parsed := parseBrokers(brokers)
	if len(parsed) == 0 {
		return nil, errors.New("kafka event bus: brokers are required")
	}
	if config == nil {
		config = DefaultKafkaEventBusConfig()
	}
	defaults := DefaultKafkaEventBusConfig()
	if strings.TrimSpace(config.Topic) == "" {
		config.Topic = defaults.Topic
	}
	if config.GroupID == "" {
		config.GroupID = defaults.GroupID
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	dialer, transport, err := newKafkaDialer(config)
	if err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(parsed...),
		Topic:                  config.Topic,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           config.WriteTimeout,
	}
	if transport != nil {
		writer.Transport = transport
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaEventBus{
		brokers:  parsed,
		writer:   writer,
		dialer:   dialer,
		config:   config,
		logger:   logger.With("bus", "kafka", "topic", config.Topic, "sasl_enabled", dialer.SASLMechanism != nil),
		ctx:      ctx,
		cancel:   cancel,
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
	}, nil
}

// Emit writes the event to the configured topic.
func (b *KafkaEventBus) Emit(ctx context.Context, event events.Event) error {
	data, err := encodeEnvelope(event)
	if err != nil {
		return fmt.Errorf("kafka event bus: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.Type()),
		Value: data,
		Time:  time.Now().UTC(),
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka event bus: write %s: %w", event.Type(), err)
	}
	b.logger.Debug("event emitted", "type", event.Type())
	return nil
}

// Register adds a handler and starts the shared consumer on first use.
func (b *KafkaEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.handlersMtx.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.handlersMtx.Unlock()

	b.readerOnce.Do(func() {
		b.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:     b.brokers,
			GroupID:     b.config.GroupID,
			Topic:       b.config.Topic,
			Dialer:      b.dialer,
			StartOffset: kafka.FirstOffset,
		})
		b.wg.Add(1)
		go b.consumeLoop()
	})
}

func (b *KafkaEventBus) consumeLoop() {
	defer b.wg.Done()
	factories := events.Factories()
	for {
		msg, err := b.reader.FetchMessage(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil {
				return
			}
			b.logger.Error("kafka consume error", "error", err)
			continue
		}
		evt, err := decodeEnvelope(msg.Value, factories)
		if err != nil {
			b.logger.Error("dropping undecodable message", "error", err, "offset", msg.Offset)
		} else {
			b.dispatch(evt)
		}
		if err := b.reader.CommitMessages(b.ctx, msg); err != nil && b.ctx.Err() == nil {
			b.logger.Error("kafka commit error", "error", err, "partition", msg.Partition, "offset", msg.Offset)
		}
	}
}

func (b *KafkaEventBus) dispatch(evt events.Event) {
	b.handlersMtx.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[events.EventType(evt.Type())]...)
	b.handlersMtx.RUnlock()
	for _, h := range handlers {
		if err := h(b.ctx, evt); err != nil {
			b.logger.Error("event handler failed", "type", evt.Type(), "error", err)
		}
	}
}

// Close stops the consumer and flushes the writer.
func (b *KafkaEventBus) Close() error {
	b.cancel()
	var errs []error
	if b.reader != nil {
		errs = append(errs, b.reader.Close())
	}
	b.wg.Wait()
	errs = append(errs, b.writer.Close())
	return errors.Join(errs...)
}

// newKafkaDialer returns the dialer used by the consumer and, when SASL or TLS is on,
// the transport used by the writer.
func newKafkaDialer(config *KafkaEventBusConfig) (*kafka.Dialer, *kafka.Transport, error) {
	mechanism, err := buildKafkaSASLMechanism(config)
	if err != nil {
		return nil, nil, err
	}
	var tlsConfig *tls.Config
	if config.TLSEnabled {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	dialer := &kafka.Dialer{
		Timeout:       5 * time.Second,
		DualStack:     true,
		TLS:           tlsConfig,
		SASLMechanism: mechanism,
	}
	if tlsConfig == nil && mechanism == nil {
		return dialer, nil, nil
	}
	return dialer, &kafka.Transport{TLS: tlsConfig, SASL: mechanism}, nil
}

func buildKafkaSASLMechanism(config *KafkaEventBusConfig) (sasl.Mechanism, error) {
	username := strings.TrimSpace(config.SASLUsername)
	password := strings.TrimSpace(config.SASLPassword)
	if username == "" && password == "" {
		return nil, nil
	}
	if username == "" || password == "" {
		return nil, errors.New("kafka event bus: sasl username and password are required together")
	}
	return plain.Mechanism{Username: username, Password: password}, nil
}

func parseBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
