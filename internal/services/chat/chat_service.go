package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/monitoring"
	"github.com/rajivgeraev/flippy-exchange/internal/pubsub"
	"github.com/rajivgeraev/flippy-exchange/internal/store"
)

// MaxContentLength задаёт максимальную длину сообщения в символах
const MaxContentLength = 4000

// Store объединяет хранилища, которые нужны переписке
type Store interface {
	GetTrade(ctx context.Context, id uuid.UUID) (*models.TradeRequest, error)
	store.MessageStore
}

// ChatService представляет сервис переписки по принятому обмену
type ChatService struct {
	store  Store
	broker pubsub.Broker
	locks  *tradeLocks
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(st Store, broker pubsub.Broker) *ChatService {
	return &ChatService{
		store:  st,
		broker: broker,
		locks:  newTradeLocks(),
	}
}

// participantTrade загружает обмен и проверяет, что actorID участвует в нём
func (s *ChatService) participantTrade(ctx context.Context, tradeID, actorID uuid.UUID) (*models.TradeRequest, error) {
	trade, err := s.store.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if !trade.IsParticipant(actorID) {
		return nil, fmt.Errorf("%w: not a participant of trade %s", errs.ErrForbidden, tradeID)
	}
	return trade, nil
}

// SendMessage сохраняет сообщение и рассылает его подписчикам канала
func (s *ChatService) SendMessage(ctx context.Context, tradeID, actorID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message is empty", errs.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, fmt.Errorf("%w: message is longer than %d characters", errs.ErrInvalidInput, MaxContentLength)
	}

	trade, err := s.participantTrade(ctx, tradeID, actorID)
	if err != nil {
		return nil, err
	}
	if trade.Status != models.TradeStatusAccepted {
		return nil, fmt.Errorf("%w: chat is closed for a %s trade", errs.ErrInvalidState, trade.Status)
	}

	// Публикация под тем же замком, что и вставка: порядок рассылки совпадает с порядком истории
	unlock := s.locks.lock(tradeID)
	defer unlock()

	msg := &models.Message{
		ID:       uuid.New(),
		TradeID:  tradeID,
		SenderID: actorID,
		Content:  content,
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: trade is no longer accepted", errs.ErrInvalidState)
		}
		log.Printf("Ошибка сохранения сообщения: %v", err)
		return nil, err
	}
	monitoring.MessagesSentTotal.Inc()

	if err := s.broker.Publish(ctx, *msg); err != nil {
		// Сообщение уже сохранено, подписчики получат его из истории
		log.Printf("Ошибка рассылки сообщения %s: %v", msg.ID, err)
	}
	return msg, nil
}

// ListMessages возвращает историю переписки по возрастанию времени
func (s *ChatService) ListMessages(ctx context.Context, tradeID, actorID uuid.UUID) ([]models.Message, error) {
	if _, err := s.participantTrade(ctx, tradeID, actorID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, tradeID)
	if err != nil {
		log.Printf("Ошибка получения сообщений обмена %s: %v", tradeID, err)
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// Subscribe подписывает участника на новые сообщения обмена.
// onMessage вызывается из отдельной горутины в порядке истории; уже доставленные и
// более ранние сообщения пропускаются. Подписка завершается вызовом возвращённой функции
// или отменой ctx.
func (s *ChatService) Subscribe(ctx context.Context, tradeID, actorID uuid.UUID, onMessage func(models.Message)) (func(), error) {
	if onMessage == nil {
		return nil, fmt.Errorf("%w: onMessage is required", errs.ErrInvalidInput)
	}
	if _, err := s.participantTrade(ctx, tradeID, actorID); err != nil {
		return nil, err
	}

	sub, err := s.broker.Subscribe(ctx, tradeID)
	if err != nil {
		log.Printf("Ошибка подписки на обмен %s: %v", tradeID, err)
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	monitoring.ChannelSubscribers.Inc()

	go func() {
		defer monitoring.ChannelSubscribers.Dec()
		defer sub.Close()

		var lastSeq int64
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-sub.C:
				if !ok {
					return
				}
				if subCtx.Err() != nil {
					return
				}
				if msg.Seq <= lastSeq {
					continue
				}
				lastSeq = msg.Seq
				onMessage(msg)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			sub.Close()
		})
	}, nil
}
