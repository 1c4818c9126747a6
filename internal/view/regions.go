package view

import (
	"html/template"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Region ids. Each is a mount point of the page.
const (
	RegionTicker            = "tasi-ticker"
	RegionStocksGrid        = "stocks-grid"
	RegionTopStocks         = "top-stocks"
	RegionStockModal        = "stock-modal"
	RegionIndicatorStock    = "indicator-stock"
	RegionCurrentSignals    = "current-signals"
	RegionPopularIndicators = "popular-indicators"
	RegionStrategyResults   = "strategy-results"
	RegionToasts            = "toast-container"
	RegionNav               = "nav"
)

// RegionIDs lists every region in page order.
var RegionIDs = []string{
	RegionNav,
	RegionTicker,
	RegionTopStocks,
	RegionStocksGrid,
	RegionIndicatorStock,
	RegionCurrentSignals,
	RegionPopularIndicators,
	RegionStrategyResults,
	RegionStockModal,
	RegionToasts,
}

// KnownRegion reports whether id names a region.
func KnownRegion(id string) bool {
	for _, r := range RegionIDs {
		if r == id {
			return true
		}
	}
	return false
}

// Token is issued when a load for a region starts. Only the newest token of
// a region may commit.
type Token struct {
	Region     string
	Generation uint64
}

// Update is a committed region content.
type Update struct {
	Region     string
	Generation uint64
	HTML       template.HTML
}

// StaleRecorder is told about dropped commits.
type StaleRecorder interface {
	RecordStale(region string)
}

// Regions holds the current content of every region of one page.
type Regions struct {
	mu     sync.Mutex
	gens   map[string]uint64
	html   map[string]template.HTML
	subs   map[chan Update]struct{}
	stale  StaleRecorder
	logger *zap.Logger
}

// NewRegions creates an empty region set. Both arguments may be nil.
func NewRegions(logger *zap.Logger, stale StaleRecorder) *Regions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Regions{
		gens:   make(map[string]uint64),
		html:   make(map[string]template.HTML),
		subs:   make(map[chan Update]struct{}),
		stale:  stale,
		logger: logger,
	}
}

// Begin issues a token for region, superseding every earlier one.
func (r *Regions) Begin(region string) Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens[region]++
	return Token{Region: region, Generation: r.gens[region]}
}

// Current reports whether t is still the newest token of its region.
func (r *Regions) Current(t Token) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[t.Region] == t.Generation
}

// Commit replaces the region content if t is still the newest token.
// It reports whether the content was stored.
func (r *Regions) Commit(t Token, html template.HTML) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur := r.gens[t.Region]; t.Generation != cur {
		r.logger.Debug("dropping stale render",
			zap.String("region", t.Region),
			zap.Uint64("generation", t.Generation),
			zap.Uint64("current", cur),
		)
		if r.stale != nil {
			r.stale.RecordStale(t.Region)
		}
		return false
	}

	r.html[t.Region] = html
	u := Update{Region: t.Region, Generation: t.Generation, HTML: html}
	for ch := range r.subs {
		select {
		case ch <- u:
		default:
			r.logger.Debug("subscriber lagging, update dropped", zap.String("region", t.Region))
		}
	}
	return true
}

// Get returns the current content of region.
func (r *Regions) Get(region string) template.HTML {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.html[region]
}

// Snapshot returns a copy of all region contents.
func (r *Regions) Snapshot() map[string]template.HTML {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]template.HTML, len(r.html))
	for k, v := range r.html {
		out[k] = v
	}
	return out
}

// Generations returns the latest issued generation per region.
func (r *Regions) Generations() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]uint64, len(r.gens))
	for k, v := range r.gens {
		out[k] = v
	}
	return out
}

// Committed returns the regions holding content, sorted.
func (r *Regions) Committed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.html))
	for k := range r.html {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Subscribe returns a channel receiving every committed update and a
// function that ends the subscription. Updates are dropped when the channel
// buffer is full.
func (r *Regions) Subscribe(buffer int) (<-chan Update, func()) {
	ch := make(chan Update, buffer)

	r.mu.Lock()
	r.subs[ch] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, ch)
			r.mu.Unlock()
			close(ch)
		})
	}
}
