package item

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-exchange/internal/errs"
	"github.com/rajivgeraev/flippy-exchange/internal/middleware"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/store/memory"
	"github.com/rajivgeraev/flippy-exchange/internal/utils"
)

func newService() (*ItemService, *utils.MockClock) {
	clock := utils.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewItemService(memory.New(clock), clock), clock
}

func TestCreate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	owner := uuid.New()

	item, err := svc.Create(ctx, owner, NewItem{Title: "  Гитара ", Category: "music"})
	require.NoError(t, err)
	assert.Equal(t, "Гитара", item.Title)
	assert.Equal(t, models.ItemTypeTrade, item.Type)
	assert.Equal(t, models.ItemStatusAvailable, item.Status)
	assert.Equal(t, owner, item.UserID)

	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), NewItem{Title: "  "})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = svc.Create(ctx, uuid.New(), NewItem{Title: "Лампа", Type: "sale"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = svc.Create(ctx, uuid.New(), NewItem{Title: strings.Repeat("a", maxTitleLength+1)})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestListByOwner(t *testing.T) {
	svc, clock := newService()
	ctx := context.Background()
	owner := uuid.New()

	empty, err := svc.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.NotNil(t, empty)

	first, err := svc.Create(ctx, owner, NewItem{Title: "Стул"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := svc.Create(ctx, owner, NewItem{Title: "Стол", Type: models.ItemTypeDonation})
	require.NoError(t, err)
	_, err = svc.Create(ctx, uuid.New(), NewItem{Title: "Чужое"})
	require.NoError(t, err)

	items, err := svc.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
}

func TestHandlers(t *testing.T) {
	svc, _ := newService()
	jwtService := utils.NewJWTService("test-secret")
	app := fiber.New()
	svc.SetupRoutes(app.Group("/api", middleware.AuthMiddleware(jwtService)))

	owner := uuid.New()
	token, err := jwtService.GenerateToken(owner)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(`{"title":"Самокат","type":"donation"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Item models.Item `json:"item"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, models.ItemTypeDonation, created.Item.Type)

	req = httptest.NewRequest(http.MethodGet, "/api/items/"+created.Item.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/api/items/"+uuid.New().String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/api/items/my", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
