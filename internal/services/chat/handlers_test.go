package chat

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-exchange/internal/middleware"
	"github.com/rajivgeraev/flippy-exchange/internal/models"
	"github.com/rajivgeraev/flippy-exchange/internal/utils"
)

func call(t *testing.T, app *fiber.App, method, path string, userID uuid.UUID, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	token, err := utils.NewJWTService("test-secret").GenerateToken(userID)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHandlers_Messages(t *testing.T) {
	f := newFixture(t)
	app := fiber.New()
	f.svc.SetupRoutes(app.Group("/api", middleware.AuthMiddleware(utils.NewJWTService("test-secret"))))

	trade := f.trade(t, models.TradeStatusAccepted)
	path := "/api/trades/" + trade.ID.String() + "/messages"

	status, body := call(t, app, http.MethodPost, path, trade.OffererID, `{"content":"oi"}`)
	require.Equal(t, http.StatusCreated, status, body)

	status, _ = call(t, app, http.MethodPost, path, trade.OffererID, `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPost, path, uuid.New(), `{"content":"oi"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = call(t, app, http.MethodGet, path, trade.RequesterID, "")
	require.Equal(t, http.StatusOK, status)
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 1)
	assert.Equal(t, "oi", messages[0].(map[string]interface{})["content"])

	pending := f.trade(t, models.TradeStatusPending)
	status, _ = call(t, app, http.MethodPost, "/api/trades/"+pending.ID.String()+"/messages", pending.OffererID, `{"content":"oi"}`)
	assert.Equal(t, http.StatusConflict, status)
}
