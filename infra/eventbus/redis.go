package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus appends ledger events to a Redis stream.
type RedisEventBus struct {
	client *redis.Client
	stream string
	group  string
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	handlersMtx sync.RWMutex
	handlers    map[events.EventType][]eventbus.HandlerFunc
	consumeOnce sync.Once
}

// NewWithRedis creates a new Redis-backed event bus.
// url: Redis connection URL (e.g., "redis://localhost:6379")
func NewWithRedis(url, stream, group string, logger *slog.Logger) (*RedisEventBus, error) {
	if url == "" || stream == "" || group == "" {
		return nil, errors.New("redis event bus: url, stream, and group are required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	return newRedisEventBus(redis.NewClient(opt), stream, group, logger)
}

func newRedisEventBus(client *redis.Client, stream, group string, logger *slog.Logger) (*RedisEventBus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:   client,
		stream:   stream,
		group:    group,
		logger:   logger.With("bus", "redis", "stream", stream),
		ctx:      ctx,
		cancel:   cancel,
		handlers: make(map[events.EventType][]eventbus.HandlerFunc),
	}, nil
}

// Emit publishes an event to the Redis stream.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	data, err := encodeEnvelope(event)
	if err != nil {
		return fmt.Errorf("redis event bus: %w", err)
	}
	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"event": string(data)},
	}).Err(); err != nil {
		return fmt.Errorf("redis event bus: emit %s: %w", event.Type(), err)
	}
	b.logger.Debug("event emitted", "type", event.Type())
	return nil
}

// Register adds a handler. The first registration creates the consumer group and
// starts reading the stream.
func (b *RedisEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.handlersMtx.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.handlersMtx.Unlock()

	b.consumeOnce.Do(func() {
		if err := b.client.XGroupCreateMkStream(b.ctx, b.stream, b.group, "0").Err(); err != nil &&
			!strings.HasPrefix(err.Error(), "BUSYGROUP") {
			b.logger.Error("failed to create consumer group", "group", b.group, "error", err)
		}
		b.wg.Add(1)
		go b.consumeLoop(fmt.Sprintf("consumer-%d", time.Now().UnixNano()))
	})
}

func (b *RedisEventBus) consumeLoop(consumer string) {
	defer b.wg.Done()
	factories := events.Factories()
	for {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: consumer,
			Streams:  []string{b.stream, ">"},
			Count:    10,
			Block:    2 * time.Second,
		}).Result()
		if err != nil {
			if b.ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				b.logger.Error("error reading from stream", "error", err, "consumer", consumer)
				time.Sleep(time.Second)
			}
			continue
		}
		for _, stream := range res {
			for _, msg := range stream.Messages {
				b.handleMessage(msg, factories)
			}
		}
	}
}

func (b *RedisEventBus) handleMessage(msg redis.XMessage, factories map[string]func() events.Event) {
	defer func() {
		if err := b.client.XAck(b.ctx, b.stream, b.group, msg.ID).Err(); err != nil && b.ctx.Err() == nil {
			b.logger.Error("failed to ack message", "id", msg.ID, "error", err)
		}
	}()
	raw, ok := msg.Values["event"].(string)
	if !ok {
		b.logger.Error("message without event field", "id", msg.ID)
		return
	}
	evt, err := decodeEnvelope([]byte(raw), factories)
	if err != nil {
		b.logger.Error("dropping undecodable message", "id", msg.ID, "error", err)
		return
	}

	b.handlersMtx.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[events.EventType(evt.Type())]...)
	b.handlersMtx.RUnlock()
	for _, h := range handlers {
		if err := h(b.ctx, evt); err != nil {
			b.logger.Error("event handler failed", "type", evt.Type(), "error", err)
		}
	}
}

// Close stops consuming and closes the client.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
