package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tasi/internal/backend"
	"github.com/newthinker/tasi/internal/core"
	"github.com/newthinker/tasi/internal/mockdata"
)

func newClient(t *testing.T, seeded bool) (*backend.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(NewServer(Config{Seeded: seeded}, mockdata.New(11), nil).Handler())
	t.Cleanup(srv.Close)
	c := backend.New(backend.Options{
		BaseURL:          srv.URL,
		TransportOptions: backend.TransportOptions{RetryInterval: time.Millisecond},
	}, nil)
	return c, srv
}

func TestMockAPI_RoundTrip(t *testing.T) {
	c, _ := newClient(t, false)
	ctx := context.Background()

	stocks, err := c.Stocks(ctx)
	require.NoError(t, err)
	assert.Empty(t, stocks, "nothing is listed before init")

	require.NoError(t, c.InitStocks(ctx))
	stocks, err = c.Stocks(ctx)
	require.NoError(t, err)
	assert.Len(t, stocks, len(mockdata.SaudiStocks))

	summary, err := c.MarketSummary(ctx)
	require.NoError(t, err)
	assert.NotZero(t, summary.TASI.Value)

	quote, err := c.Price(ctx, "2222")
	require.NoError(t, err)
	assert.Equal(t, "2222", quote.Symbol)
	assert.InDelta(t, 35.5, quote.Price, 35.5*0.031)

	history, err := c.History(ctx, "2222", 10)
	require.NoError(t, err)
	assert.Len(t, history, 11)

	report, err := c.Indicators(ctx, "1120")
	require.NoError(t, err)
	assert.Contains(t, report.Indicators, "RSI_14")

	signals, err := c.Signals(ctx, "1120")
	require.NoError(t, err)
	assert.NotEmpty(t, signals.SignalSet())

	popular, err := c.PopularIndicators(ctx)
	require.NoError(t, err)
	assert.Contains(t, popular, "trend_indicators")
}

func TestMockAPI_SpecificIndicator(t *testing.T) {
	c, _ := newClient(t, true)
	ctx := context.Background()

	report, err := c.SpecificIndicator(ctx, "2222", "SMA", map[string]any{"period": 20})
	require.NoError(t, err)
	assert.Equal(t, "SMA", report.Indicator)
	assert.Contains(t, report.Indicators, "SMA")

	report, err = c.SpecificIndicator(ctx, "2222", "BB", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bollinger Bands", report.Indicator)
	assert.Len(t, report.Indicators, 3)

	_, err = c.SpecificIndicator(ctx, "2222", "ATR", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrEnvelope))
	assert.Contains(t, err.Error(), msgUnsupported)
}

func TestMockAPI_UnknownSymbol(t *testing.T) {
	c, _ := newClient(t, true)

	_, err := c.Price(context.Background(), "9999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrEnvelope))
	assert.True(t, errors.Is(err, core.ErrSymbolNotFound))
}

func TestMockAPI_ForcedFailure(t *testing.T) {
	_, srv := newClient(t, true)

	resp, err := http.Get(srv.URL + "/api/market/summary?fail=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
}

func TestMockAPI_MalformedSpecificRequest(t *testing.T) {
	_, srv := newClient(t, true)

	resp, err := http.Post(srv.URL+"/api/indicators/2222/specific", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
