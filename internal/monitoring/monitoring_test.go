package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Endpoints(t *testing.T) {
	srv := NewServer(":0")
	srv.Handle("/extra", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	TradesProposedTotal.Inc()
	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "trades_proposed_total")

	resp, err = http.Get(ts.URL + "/extra")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestFiberMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/ping/:id", func(c fiber.Ctx) error {
		return c.SendString("pong")
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/ping/:id", "GET", "200"))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping/1", nil))
	require.NoError(t, err)
	resp.Body.Close()

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/ping/:id", "GET", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordConfirmation(t *testing.T) {
	before := testutil.ToFloat64(TradeConfirmationsTotal.WithLabelValues(ConfirmOutcomeFinalized))
	RecordConfirmation(ConfirmOutcomeFinalized)
	assert.Equal(t, before+1, testutil.ToFloat64(TradeConfirmationsTotal.WithLabelValues(ConfirmOutcomeFinalized)))
}
