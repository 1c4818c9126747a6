// Package dashboardtest provides a backend double for tests of packages
// built on the dashboard.
package dashboardtest

import (
	"context"
	"sync/atomic"

	"github.com/newthinker/tasi/internal/core"
)

// Offline is a backend whose every call fails with a network error, so the
// dashboard renders generated data. It counts the calls it receives.
type Offline struct {
	calls atomic.Int64
}

// Calls returns the number of backend calls made so far.
func (o *Offline) Calls() int64 { return o.calls.Load() }

func (o *Offline) fail() error {
	o.calls.Add(1)
	return core.ErrNetwork
}

func (o *Offline) MarketSummary(context.Context) (*core.MarketSummary, error) {
	return nil, o.fail()
}

func (o *Offline) InitStocks(context.Context) error { return o.fail() }

func (o *Offline) Stocks(context.Context) ([]core.Stock, error) { return nil, o.fail() }

func (o *Offline) Price(context.Context, string) (*core.Quote, error) { return nil, o.fail() }

func (o *Offline) History(context.Context, string, int) ([]core.PricePoint, error) {
	return nil, o.fail()
}

func (o *Offline) Indicators(context.Context, string) (*core.IndicatorReport, error) {
	return nil, o.fail()
}

func (o *Offline) SpecificIndicator(context.Context, string, string, map[string]any) (*core.IndicatorReport, error) {
	return nil, o.fail()
}

func (o *Offline) Signals(context.Context, string) (*core.SignalReport, error) {
	return nil, o.fail()
}

func (o *Offline) PopularIndicators(context.Context) (core.PopularIndicators, error) {
	return nil, o.fail()
}
