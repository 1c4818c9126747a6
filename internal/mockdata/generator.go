// Package mockdata generates placeholder payloads with the same shapes the
// backend returns. It feeds the dashboard fallbacks and the mock API.
package mockdata

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/newthinker/tasi/internal/core"
)

// MinClose is the floor applied to generated closing prices.
const MinClose = 10.0

// SaudiStocks is the stock list the backend seeds on init.
var SaudiStocks = []core.Stock{
	{Symbol: "2222", Name: "أرامكو السعودية", Sector: "الطاقة"},
	{Symbol: "1120", Name: "الراجحي", Sector: "البنوك"},
	{Symbol: "2030", Name: "سابك", Sector: "البتروكيماويات"},
	{Symbol: "1180", Name: "الأهلي السعودي", Sector: "البنوك"},
	{Symbol: "1211", Name: "معادن", Sector: "المواد الأساسية"},
	{Symbol: "7010", Name: "الاتصالات السعودية", Sector: "الاتصالات"},
	{Symbol: "2380", Name: "بترو رابغ", Sector: "البتروكيماويات"},
	{Symbol: "1140", Name: "البنك الأهلي التجاري", Sector: "البنوك"},
	{Symbol: "2010", Name: "سابك للمغذيات الزراعية", Sector: "البتروكيماويات"},
	{Symbol: "4030", Name: "الخليج للتدريب", Sector: "التعليم"},
}

// fallbackStockCount is how many of SaudiStocks the offline working set holds.
const fallbackStockCount = 8

var basePrices = map[string]float64{
	"2222": 35.50,
	"1120": 85.20,
	"2030": 95.80,
	"1180": 42.30,
	"1211": 65.40,
}

// Generator produces randomized placeholder data. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// New creates a generator seeded with seed.
func New(seed int64) *Generator {
	return NewWithSource(rand.NewSource(seed), time.Now)
}

// NewWithSource creates a generator over src with a custom clock.
func NewWithSource(src rand.Source, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{rnd: rand.New(src), now: now}
}

// Now returns the generator's clock reading.
func (g *Generator) Now() time.Time {
	return g.now()
}

func (g *Generator) float() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.float()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Stocks returns the offline working set with random market caps.
func (g *Generator) Stocks() []core.Stock {
	out := make([]core.Stock, fallbackStockCount)
	for i := range out {
		s := SaudiStocks[i]
		s.ID = i + 1
		s.MarketCap = g.float() * 1e12
		out[i] = s
	}
	return out
}

// Lookup finds a seeded stock by symbol.
func Lookup(symbol string) (core.Stock, bool) {
	for i, s := range SaudiStocks {
		if s.Symbol == symbol {
			s.ID = i + 1
			return s, true
		}
	}
	return core.Stock{}, false
}

// MarketSummary returns the canned market ticker.
func (g *Generator) MarketSummary() core.MarketSummary {
	return core.MarketSummary{
		TASI:      core.IndexValue{Value: 11276.91, Change: -32.45, ChangePercent: -0.29},
		MarketCap: 2850000000000,
		Volume:    156789000,
		Trades:    45678,
		Advancing: 89,
		Declining: 134,
		Unchanged: 23,
		Timestamp: g.now().Format(time.RFC3339),
	}
}

// Quote returns a placeholder quote: price in [50,150), change in [-5,5).
func (g *Generator) Quote(symbol string) core.Quote {
	price := g.uniform(50, 150)
	change := g.uniform(-5, 5)
	return core.Quote{
		Symbol:        symbol,
		Price:         round2(price),
		Change:        round2(change),
		ChangePercent: round2(change / price * 100),
		Volume:        int64(g.intn(1000000)),
		Timestamp:     g.now().Format(time.RFC3339),
		Source:        "Mock Data",
	}
}

// BackendQuote moves a known base price by up to 3% either way.
func (g *Generator) BackendQuote(symbol string) core.Quote {
	base, ok := basePrices[symbol]
	if !ok {
		base = 50
	}
	pct := g.uniform(-3, 3)
	price := base * (1 + pct/100)
	return core.Quote{
		Symbol:        symbol,
		Price:         round2(price),
		Change:        round2(price - base),
		ChangePercent: round2(pct),
		Volume:        int64(100000 + g.intn(900000)),
		Timestamp:     g.now().Format(time.RFC3339),
		Source:        "Mock Data",
	}
}

// History returns days+1 daily points ending today, oldest first, each
// close at least MinClose.
func (g *Generator) History(days int) []core.PricePoint {
	if days < 0 {
		days = 0
	}
	today := core.NewDay(g.now())
	price := g.uniform(50, 100)

	out := make([]core.PricePoint, 0, days+1)
	for i := days; i >= 0; i-- {
		price = math.Max(price+g.uniform(-2.5, 2.5), MinClose)
		c := round2(price)
		out = append(out, core.PricePoint{
			Date:   today.AddDays(-i),
			Open:   c,
			High:   round2(price + g.uniform(0, 2)),
			Low:    round2(math.Max(price-g.uniform(0, 2), 0)),
			Close:  c,
			Volume: int64(100000 + g.intn(900000)),
		})
	}
	return out
}

// Oscillator returns n values in [30,70), the shape of a quiet RSI.
func (g *Generator) Oscillator(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = round2(g.uniform(30, 70))
	}
	return out
}

