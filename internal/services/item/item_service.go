package item

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/store"
	"github.com/rajivgeraev/flippy-exchange/internal/utils"
)

const maxTitleLength = 200

// ItemService представляет сервис для работы с вещами
type ItemService struct {
	items store.ItemRegistry
	clock utils.Clock
}

// NewItemService создает новый экземпляр ItemService
func NewItemService(items store.ItemRegistry, clock utils.Clock) *ItemService {
	if clock == nil {
		clock = utils.NewRealClock()
	}
	return &ItemService{items: items, clock: clock}
}

// NewItem содержит данные новой вещи
type NewItem struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	Type        models.ItemType `json:"type"`
}

// Create выставляет вещь от имени владельца; новая вещь всегда доступна
func (s *ItemService) Create(ctx context.Context, ownerID uuid.UUID, in NewItem) (*models.Item, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return nil, fmt.Errorf("%w: title is longer than %d characters", errs.ErrInvalidInput, maxTitleLength)
	}
	if in.Type == "" {
		in.Type = models.ItemTypeTrade
	}
	if !models.ValidItemType(in.Type) {
		return nil, fmt.Errorf("%w: unknown item type %q", errs.ErrInvalidInput, in.Type)
	}

	item := &models.Item{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    in.ImageURL,
		Type:        in.Type,
		Status:      models.ItemStatusAvailable,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		log.Printf("Ошибка создания вещи: %v", err)
		return nil, err
	}
	return item, nil
}

// Get возвращает вещь по ID
func (s *ItemService) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.items.GetItem(ctx, id)
}

// ListByOwner возвращает вещи пользователя, новые первыми
func (s *ItemService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	items, err := s.items.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		log.Printf("Ошибка получения вещей пользователя %s: %v", ownerID, err)
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}
