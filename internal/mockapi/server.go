// Package mockapi serves the stock backend API from generated data so the
// dashboard can run without the real backend.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/core"
	"github.com/newthinker/tasi/internal/indicator"
	"github.com/newthinker/tasi/internal/metrics"
	"github.com/newthinker/tasi/internal/mockdata"
)

const (
	msgNotFound    = "السهم غير موجود"
	msgUnsupported = "مؤشر غير مدعوم"
	msgInitialized = "تم تهيئة قاعدة البيانات بنجاح"
	msgMockNote    = "بيانات تجريبية - لأغراض التطوير"

	defaultHistoryDays   = 30
	defaultIndicatorDays = 100
)

// Config holds mock server configuration.
type Config struct {
	Host string
	Port int
	// Seeded starts the server with its stock list already initialized.
	Seeded bool
}

// Server is the mock backend.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	gen        *mockdata.Generator
	logger     *zap.Logger
	seeded     atomic.Bool
}

// NewServer creates a mock backend drawing from gen.
func NewServer(cfg Config, gen *mockdata.Generator, logger *zap.Logger) *Server {
	if gen == nil {
		gen = mockdata.New(time.Now().UnixNano())
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := chi.NewRouter()
	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router: router,
		gen:    gen,
		logger: logger,
	}
	s.seeded.Store(cfg.Seeded)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(chimw.Recoverer)
	s.router.Use(metrics.LoggingMiddleware(s.logger))
	s.router.Use(forcedFailure)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/market/summary", s.marketSummary)
		r.Post("/stocks/init", s.initStocks)
		r.Get("/stocks", s.stocks)
		r.Get("/stocks/{symbol}/price", s.price)
		r.Get("/stocks/{symbol}/history", s.history)
		r.Get("/indicators/popular", s.popular)
		r.Get("/indicators/{symbol}", s.indicators)
		r.Get("/indicators/{symbol}/signals", s.signals)
		r.Post("/indicators/{symbol}/specific", s.specific)
	})
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting mock backend", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("mock backend error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down mock backend")
	return s.httpServer.Shutdown(ctx)
}

// forcedFailure answers ?fail=1 with a failure envelope.
func forcedFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") == "1" {
			writeError(w, http.StatusInternalServerError, "forced failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func write(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any, extra map[string]any) {
	body := map[string]any{"success": true, "data": data}
	for k, v := range extra {
		body[k] = v
	}
	write(w, http.StatusOK, body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	write(w, status, map[string]any{"success": false, "error": msg})
}

// known resolves the symbol in the URL, answering 404 when it is not seeded.
func (s *Server) known(w http.ResponseWriter, r *http.Request) (core.Stock, bool) {
	symbol := chi.URLParam(r, "symbol")
	stock, ok := mockdata.Lookup(symbol)
	if !ok || !s.seeded.Load() {
		writeError(w, http.StatusNotFound, msgNotFound)
		return core.Stock{}, false
	}
	return stock, true
}

func intParam(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v > 0 {
		return v
	}
	return def
}

func (s *Server) marketSummary(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.gen.MarketSummary(), nil)
}

func (s *Server) initStocks(w http.ResponseWriter, r *http.Request) {
	s.seeded.Store(true)
	write(w, http.StatusOK, map[string]any{"success": true, "message": msgInitialized})
}

func (s *Server) stocks(w http.ResponseWriter, r *http.Request) {
	stocks := []core.Stock{}
	if s.seeded.Load() {
		for i, st := range mockdata.SaudiStocks {
			st.ID = i + 1
			stocks = append(stocks, st)
		}
	}
	writeData(w, stocks, map[string]any{"count": len(stocks)})
}

func (s *Server) price(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.known(w, r)
	if !ok {
		return
	}
	writeData(w, s.gen.BackendQuote(stock.Symbol), map[string]any{"note": msgMockNote})
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.known(w, r); !ok {
		return
	}
	days := intParam(r, "days", defaultHistoryDays)
	writeData(w, s.gen.History(days), map[string]any{"note": msgMockNote})
}

func (s *Server) indicators(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.known(w, r)
	if !ok {
		return
	}
	days := intParam(r, "days", defaultIndicatorDays)
	points := s.gen.History(days)
	writeData(w, core.IndicatorReport{
		Symbol:     stock.Symbol,
		Indicators: indicator.Compute(points),
		Signals:    indicator.Signals(points),
		DataPoints: len(points),
		Period:     fmt.Sprintf("%d أيام", days),
	}, nil)
}

func (s *Server) signals(w http.ResponseWriter, r *http.Request) {
	stock, ok := s.known(w, r)
	if !ok {
		return
	}
	signals := indicator.Signals(s.gen.History(defaultIndicatorDays))
	analysis := mockdata.Analyze(signals)
	writeData(w, core.SignalReport{
		Symbol:    stock.Symbol,
		Signals:   signals,
		Analysis:  &analysis,
		Timestamp: s.gen.Now().Format(time.RFC3339),
	}, nil)
}

func (s *Server) popular(w http.ResponseWriter, r *http.Request) {
	writeData(w, mockdata.IndicatorCatalog(), nil)
}

type specificRequest struct {
	Indicator  string         `json:"indicator"`
	Parameters map[string]any `json:"parameters"`
}

// param reads a numeric parameter; JSON numbers arrive as float64.
func param(params map[string]any, name string, def float64) float64 {
	if v, ok := params[name].(float64); ok && v > 0 {
		return v
	}
	return def
}

func (s *Server) specific(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.known(w, r); !ok {
		return
	}

	var req specificRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	closes, _, _ := indicator.Prices(s.gen.History(defaultIndicatorDays))
	out := map[string]any{}

	switch req.Indicator {
	case "SMA":
		period := int(param(req.Parameters, "period", 20))
		out["indicator"] = "SMA"
		out["period"] = period
		out["values"] = core.NullableValues(indicator.Align(indicator.SMA(closes, period), len(closes)))
	case "RSI":
		period := int(param(req.Parameters, "period", indicator.RSIPeriod))
		out["indicator"] = "RSI"
		out["period"] = period
		out[fmt.Sprintf("RSI_%d", period)] = core.NullableValues(indicator.RSI(closes, period))
	case "MACD":
		line, sig, hist := indicator.MACD(closes, indicator.MACDFast, indicator.MACDSlow, indicator.MACDSignal)
		out["indicator"] = "MACD"
		out["MACD"] = core.NullableValues(line)
		out["MACD_Signal"] = core.NullableValues(sig)
		out["MACD_Histogram"] = core.NullableValues(hist)
	case "BB":
		period := int(param(req.Parameters, "period", indicator.BollingerPeriod))
		width := param(req.Parameters, "std_dev", indicator.BollingerWidth)
		upper, middle, lower := indicator.Bollinger(closes, period, width)
		out["indicator"] = "Bollinger Bands"
		out["period"] = period
		out["std_dev"] = width
		out["BB_Upper"] = core.NullableValues(upper)
		out["BB_Middle"] = core.NullableValues(middle)
		out["BB_Lower"] = core.NullableValues(lower)
	default:
		writeError(w, http.StatusBadRequest, msgUnsupported)
		return
	}

	writeData(w, out, nil)
}
