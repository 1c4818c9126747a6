// Package backend is the typed client of the stock data API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/core"
)

// validSymbol matches Tadawul codes like 2222 and suffixed forms like 2222.SR
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9]{1,10}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("symbol cannot be empty"))
	}
	if !validSymbol.MatchString(symbol) {
		return core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("invalid symbol format: %q", symbol))
	}
	return nil
}

// Options configures a Client.
type Options struct {
	BaseURL string
	TransportOptions
}

// Client talks to the backend API.
type Client struct {
	baseURL   string
	transport *transport
	logger    *zap.Logger
}

// New creates a new backend client.
func New(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		transport: newTransport(opts.TransportOptions),
		logger:    logger,
	}
}

// BaseURL returns the API root the client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = b
	}

	start := time.Now()
	r, err := c.transport.do(ctx, method, u, body)
	if err != nil {
		c.logger.Debug("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return core.WrapError(core.ErrNetwork, err)
	}

	env, err := decodeEnvelope(r, out)
	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", r.status),
		zap.Duration("duration", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	if err == nil && env.Note != "" {
		c.logger.Debug("backend note", zap.String("path", path), zap.String("note", env.Note))
	}
	return err
}

// MarketSummary fetches the market ticker.
func (c *Client) MarketSummary(ctx context.Context) (*core.MarketSummary, error) {
	var out core.MarketSummary
	if err := c.call(ctx, http.MethodGet, "/market/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitStocks asks the backend to seed its stock list.
func (c *Client) InitStocks(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/stocks/init", nil, nil, nil)
}

// Stocks lists the stocks known to the backend.
func (c *Client) Stocks(ctx context.Context) ([]core.Stock, error) {
	var out []core.Stock
	if err := c.call(ctx, http.MethodGet, "/stocks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Price fetches the latest quote for symbol.
func (c *Client) Price(ctx context.Context, symbol string) (*core.Quote, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	var out core.Quote
	if err := c.call(ctx, http.MethodGet, "/stocks/"+url.PathEscape(symbol)+"/price", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Symbol == "" {
		out.Symbol = symbol
	}
	return &out, nil
}

// History fetches daily prices for the last days days, oldest first.
func (c *Client) History(ctx context.Context, symbol string, days int) ([]core.PricePoint, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))

	var out []core.PricePoint
	if err := c.call(ctx, http.MethodGet, "/stocks/"+url.PathEscape(symbol)+"/history", q, nil, &out); err != nil {
		return nil, err
	}
	// Some backends answer newest first.
	if len(out) > 1 && out[0].Date.After(out[len(out)-1].Date.Time) {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// Indicators fetches every indicator series for symbol.
func (c *Client) Indicators(ctx context.Context, symbol string) (*core.IndicatorReport, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	var out core.IndicatorReport
	if err := c.call(ctx, http.MethodGet, "/indicators/"+url.PathEscape(symbol), nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Symbol == "" {
		out.Symbol = symbol
	}
	return &out, nil
}

type specificRequest struct {
	Indicator  string         `json:"indicator"`
	Parameters map[string]any `json:"parameters"`
}

// SpecificIndicator computes one indicator. The backend answers with a flat
// object of series plus scalar metadata, which is folded into a report.
func (c *Client) SpecificIndicator(ctx context.Context, symbol, indicator string, params map[string]any) (*core.IndicatorReport, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}

	var raw json.RawMessage
	req := specificRequest{Indicator: indicator, Parameters: params}
	if err := c.call(ctx, http.MethodPost, "/indicators/"+url.PathEscape(symbol)+"/specific", nil, req, &raw); err != nil {
		return nil, err
	}

	var series core.IndicatorSeries
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, core.WrapError(core.ErrParse, fmt.Errorf("decoding indicator: %w", err))
	}
	var meta struct {
		Indicator string `json:"indicator"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		c.logger.Debug("indicator name not decoded", zap.String("symbol", symbol), zap.Error(err))
	}
	if meta.Indicator == "" {
		meta.Indicator = indicator
	}

	// SMA comes back as a bare "values" series
	if values, ok := series["values"]; ok {
		delete(series, "values")
		series[indicator] = values
	}

	return &core.IndicatorReport{
		Symbol:     symbol,
		Indicator:  meta.Indicator,
		Indicators: series,
	}, nil
}

// Signals fetches the latest signals and the overall analysis for symbol.
func (c *Client) Signals(ctx context.Context, symbol string) (*core.SignalReport, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	var out core.SignalReport
	if err := c.call(ctx, http.MethodGet, "/indicators/"+url.PathEscape(symbol)+"/signals", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.Symbol == "" {
		out.Symbol = symbol
	}
	return &out, nil
}

// PopularIndicators fetches the indicator catalog.
func (c *Client) PopularIndicators(ctx context.Context) (core.PopularIndicators, error) {
	var out core.PopularIndicators
	if err := c.call(ctx, http.MethodGet, "/indicators/popular", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
