package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rajivgeraev/flippy-exchange/internal/config"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/monitoring"
)

// ConnectRedis создаёт клиент Redis и проверяет соединение
func ConnectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// RedisBroker рассылает сообщения между инстансами через Redis Pub/Sub.
// Redis сохраняет порядок публикаций внутри одного канала.
type RedisBroker struct {
	client     *redis.Client
	bufferSize int
}

// NewRedisBroker создаёт брокер поверх существующего клиента; клиент закрывает вызывающая сторона
func NewRedisBroker(client *redis.Client, bufferSize int) *RedisBroker {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &RedisBroker{client: client, bufferSize: bufferSize}
}

func channelName(tradeID uuid.UUID) string {
	return "trade:" + tradeID.String() + ":messages"
}

func (b *RedisBroker) Publish(ctx context.Context, msg models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelName(msg.TradeID), data).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, tradeID uuid.UUID) (*Subscription, error) {
	ps := b.client.Subscribe(ctx, channelName(tradeID))
	// Ждём подтверждения подписки, чтобы не потерять публикации сразу после возврата
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channelName(tradeID), err)
	}

	out := make(chan models.Message, b.bufferSize)
	done := make(chan struct{})

	go func() {
		defer close(out)
		in := ps.Channel()
		for {
			select {
			case <-done:
				return
			case raw, ok := <-in:
				if !ok {
					return
				}
				var msg models.Message
				if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
					log.Printf("Ошибка разбора сообщения из Redis: %v", err)
					continue
				}
				select {
				case out <- msg:
				default:
					monitoring.ChannelDroppedTotal.Inc()
				}
			}
		}
	}()

	return newSubscription(out, func() {
		close(done)
		_ = ps.Close()
	}), nil
}

func (b *RedisBroker) Close() error {
	return nil
}
