package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/response"
)

const (
	// Максимальное время ожидания для pong от клиента
	pongWait = 60 * time.Second

	// Отправлять ping-сообщения клиенту с этим интервалом
	pingPeriod = (pongWait * 9) / 10

	writeWait = 10 * time.Second

	// Максимальный размер сообщения от клиента
	maxMessageSize = 64 * 1024

	// Размер буфера для отправляемых сообщений
	writeBufferSize = 256
)

// ChatService описывает операции переписки, доступные через WebSocket
type ChatService interface {
	SendMessage(ctx context.Context, tradeID, actorID uuid.UUID, content string) (*models.Message, error)
	Subscribe(ctx context.Context, tradeID, actorID uuid.UUID, onMessage func(models.Message)) (func(), error)
}

// Client представляет собой отдельное WebSocket соединение
type Client struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	conn    *websocket.Conn
	send    chan []byte // Буферизованный канал исходящих сообщений
	manager *Manager
	chat    ChatService

	ctx       context.Context
	cancel    context.CancelFunc
	closeChan chan struct{}

	// Используется только из readPump
	subscriptions map[uuid.UUID]func()
}

// NewClient создает новый экземпляр Client
func NewClient(userID uuid.UUID, conn *websocket.Conn, manager *Manager, chat ChatService) *Client {
	ctx, cancel := context.WithCancel(manager.ctx)
	return &Client{
		ID:            uuid.New(),
		UserID:        userID,
		conn:          conn,
		send:          make(chan []byte, writeBufferSize),
		manager:       manager,
		chat:          chat,
		ctx:           ctx,
		cancel:        cancel,
		closeChan:     make(chan struct{}),
		subscriptions: make(map[uuid.UUID]func()),
	}
}

// Start запускает клиентские горутины для чтения и записи
func (c *Client) Start() {
	c.manager.AddClient(c)

	go c.readPump()
	go c.writePump()
}

// readPump обрабатывает входящие сообщения от клиента
func (c *Client) readPump() {
	defer func() {
		for _, unsubscribe := range c.subscriptions {
			unsubscribe()
		}
		c.cancel()
		c.manager.RemoveClient(c.ID)
		c.conn.Close()
		close(c.closeChan)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Unexpected close error: %v", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// writePump отправляет сообщения клиенту
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Error writing message: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeChan:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// enqueue ставит событие в очередь отправки без блокировки
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		// Канал заполнен, клиент слишком медленный - закрываем соединение
		log.Printf("Send channel full for client %s, closing connection", c.ID)
		c.conn.Close()
	}
}

func (c *Client) sendEvent(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling event: %v", err)
		return
	}
	c.enqueue(data)
}

func (c *Client) sendError(tradeID string, err error) {
	_, body := response.MapError(err)
	message, _ := body["error"].(string)
	c.sendEvent(Event{Type: EventError, TradeID: tradeID, Error: message})
}

// handleIncomingMessage обрабатывает входящие сообщения от клиента
func (c *Client) handleIncomingMessage(message []byte) {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("Error unmarshaling event: %v", err)
		c.sendEvent(Event{Type: EventError, Error: "Неверный формат события"})
		return
	}

	tradeID, err := uuid.Parse(event.TradeID)
	if err != nil {
		c.sendEvent(Event{Type: EventError, TradeID: event.TradeID, Error: "Неверный формат ID обмена"})
		return
	}

	switch event.Type {
	case EventSubscribe:
		c.subscribe(tradeID)
	case EventUnsubscribe:
		if unsubscribe, ok := c.subscriptions[tradeID]; ok {
			unsubscribe()
			delete(c.subscriptions, tradeID)
		}
	case EventSendMessage:
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			c.sendEvent(Event{Type: EventError, TradeID: event.TradeID, Error: "Неверный формат сообщения"})
			return
		}
		if _, err := c.chat.SendMessage(c.ctx, tradeID, c.UserID, payload.Content); err != nil {
			c.sendError(event.TradeID, err)
		}
	default:
		log.Printf("Unhandled event type: %s", event.Type)
		c.sendEvent(Event{Type: EventError, TradeID: event.TradeID, Error: "Неизвестный тип события"})
	}
}

func (c *Client) subscribe(tradeID uuid.UUID) {
	if _, ok := c.subscriptions[tradeID]; ok {
		return
	}

	unsubscribe, err := c.chat.Subscribe(c.ctx, tradeID, c.UserID, func(msg models.Message) {
		payload, err := json.Marshal(msg)
		if err != nil {
			log.Printf("Error marshaling message: %v", err)
			return
		}
		c.sendEvent(Event{
			Type:    EventNewMessage,
			TradeID: msg.TradeID.String(),
			UserID:  msg.SenderID.String(),
			Payload: payload,
		})
	})
	if err != nil {
		c.sendError(tradeID.String(), err)
		return
	}
	c.subscriptions[tradeID] = unsubscribe
}
