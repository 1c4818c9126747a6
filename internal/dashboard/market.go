package dashboard

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/chart"
	"github.com/newthinker/tasi/internal/core"
	"github.com/newthinker/tasi/internal/loader"
	"github.com/newthinker/tasi/internal/mockdata"
	"github.com/newthinker/tasi/internal/view"
)

// Filter returns the stocks whose symbol, name or sector contains term.
// Matching is case-sensitive; an empty term keeps every stock.
func Filter(stocks []core.Stock, term string) []core.Stock {
	out := make([]core.Stock, 0, len(stocks))
	for _, s := range stocks {
		if term == "" ||
			strings.Contains(s.Symbol, term) ||
			strings.Contains(s.Name, term) ||
			strings.Contains(s.Sector, term) {
			out = append(out, s)
		}
	}
	return out
}

// LoadMarketSummary reloads the ticker.
func (c *Controller) LoadMarketSummary(ctx context.Context) Outcome {
	var o Outcome
	c.loadMarketSummary(ctx, &o)
	c.finish(&o)
	return o
}

func (c *Controller) loadMarketSummary(ctx context.Context, o *Outcome) {
	tok := c.regions.Begin(view.RegionTicker)
	summary := read(o, loader.Read(ctx, c.deps.Loader, "market-summary",
		c.deps.Backend.MarketSummary,
		func() *core.MarketSummary {
			s := c.deps.Generator.MarketSummary()
			return &s
		}))
	c.render(o, tok, summary)
}

// ReloadStocks asks the backend to seed its stock list, then replaces the
// working set.
func (c *Controller) ReloadStocks(ctx context.Context) Outcome {
	var o Outcome
	c.reloadStocks(ctx, &o, true)
	c.finish(&o)
	return o
}

// reloadStocks replaces the working set. With seed it first asks the backend
// to initialize its stock list.
func (c *Controller) reloadStocks(ctx context.Context, o *Outcome, seed bool) {
	if seed {
		if err := c.deps.Backend.InitStocks(ctx); err != nil {
			c.log.Debug("stock init failed", zap.Error(err))
		}
	}
	res := loader.Read(ctx, c.deps.Loader, "stocks", c.deps.Backend.Stocks, c.deps.Generator.Stocks)
	stocks := read(o, res)

	// Tokens are taken with the working set so that a search started during
	// the fetch cannot leave the grid showing the previous set.
	c.mu.Lock()
	c.stocks = append([]core.Stock(nil), stocks...)
	if !containsSymbol(c.stocks, c.selected) {
		c.selected = ""
	}
	term, selected := c.term, c.selected
	grid := c.regions.Begin(view.RegionStocksGrid)
	options := c.regions.Begin(view.RegionIndicatorStock)
	c.mu.Unlock()

	c.render(o, grid, view.StockGrid{Stocks: Filter(stocks, term), Term: term, Total: len(stocks)})
	c.render(o, options, view.StockOptions{Stocks: stocks, Selected: selected})

	if !res.Fallback() && !o.quiet {
		c.notify(o, view.NotifySuccess, "تم تحديث بيانات الأسهم بنجاح")
	}
}

func containsSymbol(stocks []core.Stock, symbol string) bool {
	for _, s := range stocks {
		if s.Symbol == symbol {
			return true
		}
	}
	return false
}

// Search re-renders the stock grid from the working set filtered by term.
func (c *Controller) Search(term string) Outcome {
	var o Outcome

	c.mu.Lock()
	c.term = term
	tok := c.regions.Begin(view.RegionStocksGrid)
	filtered := Filter(c.stocks, term)
	total := len(c.stocks)
	c.mu.Unlock()

	c.render(&o, tok, view.StockGrid{Stocks: filtered, Term: term, Total: total})
	return o
}

// Stocks returns a copy of the working set.
func (c *Controller) Stocks() []core.Stock {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Stock(nil), c.stocks...)
}

// LoadTopStocks renders the top performers list.
func (c *Controller) LoadTopStocks() Outcome {
	var o Outcome
	c.loadTopStocks(&o)
	return o
}

func (c *Controller) loadTopStocks(o *Outcome) {
	c.render(o, c.regions.Begin(view.RegionTopStocks), mockdata.TopStocks())
}

// LoadSectorsChart draws the sector composition chart.
func (c *Controller) LoadSectorsChart() Outcome {
	var o Outcome
	c.loadSectorsChart(&o)
	return o
}

func (c *Controller) loadSectorsChart(o *Outcome) {
	c.charts.Draw(chart.CanvasSectors, chart.SectorBreakdown(mockdata.Sectors()))
	o.drew(chart.CanvasSectors)
}

func (c *Controller) lookup(symbol string) (core.Stock, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.stocks {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return core.Stock{}, false
}

// OpenStock shows the detail modal of symbol: its price first, then the
// price history chart.
func (c *Controller) OpenStock(ctx context.Context, symbol string) (Outcome, error) {
	var o Outcome

	stock, ok := c.lookup(symbol)
	if !ok {
		return o, fmt.Errorf("%w: %q", core.ErrSymbolNotFound, symbol)
	}

	tok := c.regions.Begin(view.RegionStockModal)
	c.mu.Lock()
	c.open = symbol
	c.mu.Unlock()

	quote := read(&o, loader.Read(ctx, c.deps.Loader, "price",
		func(ctx context.Context) (*core.Quote, error) { return c.deps.Backend.Price(ctx, symbol) },
		func() *core.Quote {
			q := c.deps.Generator.Quote(symbol)
			return &q
		}))
	c.render(&o, tok, &view.StockDetail{Stock: stock, Quote: *quote, UpdatedAt: c.deps.Now()})

	days := c.deps.Options.HistoryDays
	history := read(&o, loader.Read(ctx, c.deps.Loader, "history",
		func(ctx context.Context) ([]core.PricePoint, error) {
			return c.deps.Backend.History(ctx, symbol, days)
		},
		func() []core.PricePoint { return c.deps.Generator.History(days) }))

	// A newer open or a close supersedes this chart.
	if c.regions.Current(tok) {
		c.charts.Draw(chart.CanvasStock, chart.PriceLine(history))
		o.drew(chart.CanvasStock)
	}

	c.finish(&o)
	return o, nil
}

// CloseStock hides the modal and destroys its chart.
func (c *Controller) CloseStock() Outcome {
	var o Outcome
	c.closeStock(&o)
	return o
}

func (c *Controller) closeStock(o *Outcome) {
	tok := c.regions.Begin(view.RegionStockModal)

	c.mu.Lock()
	c.open = ""
	c.mu.Unlock()

	c.render(o, tok, (*view.StockDetail)(nil))
	if _, ok := c.charts.Current(chart.CanvasStock); ok {
		c.charts.DestroyCanvas(chart.CanvasStock)
		o.drew(chart.CanvasStock)
	}
}
