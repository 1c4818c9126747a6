// Package dashboard holds the view state of one browser session and runs the
// dashboard flows against the backend: every flow loads data, renders the
// affected regions and reports what changed so the HTTP layer can swap it in.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/chart"
	"github.com/newthinker/tasi/internal/core"
	"github.com/newthinker/tasi/internal/job"
	"github.com/newthinker/tasi/internal/loader"
	"github.com/newthinker/tasi/internal/mockdata"
	"github.com/newthinker/tasi/internal/view"
)

// PageTitle is shown in the browser tab and the header.
const PageTitle = "السوق السعودي - تاسي"

// Backend is the part of the backend client the dashboard uses.
type Backend interface {
	MarketSummary(ctx context.Context) (*core.MarketSummary, error)
	InitStocks(ctx context.Context) error
	Stocks(ctx context.Context) ([]core.Stock, error)
	Price(ctx context.Context, symbol string) (*core.Quote, error)
	History(ctx context.Context, symbol string, days int) ([]core.PricePoint, error)
	Indicators(ctx context.Context, symbol string) (*core.IndicatorReport, error)
	SpecificIndicator(ctx context.Context, symbol, indicator string, params map[string]any) (*core.IndicatorReport, error)
	Signals(ctx context.Context, symbol string) (*core.SignalReport, error)
	PopularIndicators(ctx context.Context) (core.PopularIndicators, error)
}

// JobRecorder is told the final status of every strategy job.
type JobRecorder interface {
	RecordStrategyJob(status string)
}

// Options tune the flows.
type Options struct {
	HistoryDays       int
	StrategyDelay     time.Duration
	NotificationLimit int
}

// Deps are the collaborators shared by all controllers.
type Deps struct {
	Backend     Backend
	Renderer    *view.Renderer
	Loader      *loader.Loader
	Generator   *mockdata.Generator
	Jobs        *job.Store
	Logger      *zap.Logger
	Charts      chart.Gauge
	Stale       view.StaleRecorder
	JobRecorder JobRecorder
	Options     Options
	Now         func() time.Time
}

func (d Deps) normalized() (Deps, error) {
	if d.Backend == nil {
		return d, errors.New("dashboard: backend is required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Renderer == nil {
		r, err := view.NewRenderer()
		if err != nil {
			return d, err
		}
		d.Renderer = r
	}
	if d.Loader == nil {
		d.Loader = loader.New(d.Logger, nil)
	}
	if d.Generator == nil {
		d.Generator = mockdata.New(time.Now().UnixNano())
	}
	if d.Jobs == nil {
		d.Jobs = job.NewStore(100, time.Hour)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Options.HistoryDays <= 0 {
		d.Options.HistoryDays = 30
	}
	if d.Options.NotificationLimit <= 0 {
		d.Options.NotificationLimit = 5
	}
	if d.Options.StrategyDelay < 0 {
		d.Options.StrategyDelay = 0
	}
	return d, nil
}

// Outcome tells what a flow changed.
type Outcome struct {
	// Regions lists the regions whose content changed, in commit order.
	Regions []string
	// Section is the section activated by the flow, if any.
	Section string
	// Charts lists the canvases whose chart was drawn or destroyed.
	Charts []string

	fallback bool
	quiet    bool
}

func (o *Outcome) touch(region string) {
	for _, r := range o.Regions {
		if r == region {
			return
		}
	}
	o.Regions = append(o.Regions, region)
}

func (o *Outcome) drew(canvas string) {
	for _, c := range o.Charts {
		if c == canvas {
			return
		}
	}
	o.Charts = append(o.Charts, canvas)
}

// Fallback reports whether the flow rendered placeholder data.
func (o Outcome) Fallback() bool { return o.fallback }

// Changed reports whether the flow changed anything visible.
func (o Outcome) Changed() bool {
	return len(o.Regions) > 0 || o.Section != "" || len(o.Charts) > 0
}

// Controller is the view state of one session. It is safe for concurrent use.
type Controller struct {
	id      string
	deps    Deps
	log     *zap.Logger
	regions *view.Regions
	charts  *chart.Holder

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	active   string
	stocks   []core.Stock
	term     string
	selected string
	open     string
	notes    []view.Notification
	strategy string
}

// NewController creates the controller of session id.
func NewController(id string, deps Deps) (*Controller, error) {
	deps, err := deps.normalized()
	if err != nil {
		return nil, err
	}
	log := deps.Logger.With(zap.String("session", id))
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		id:      id,
		deps:    deps,
		log:     log,
		regions: view.NewRegions(log, deps.Stale),
		charts:  chart.NewHolder(deps.Charts),
		ctx:     ctx,
		cancel:  cancel,
		active:  view.SectionDashboard,
	}, nil
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Regions returns the region contents of this session.
func (c *Controller) Regions() *view.Regions { return c.regions }

// Done is closed when the controller is closed.
func (c *Controller) Done() <-chan struct{} { return c.ctx.Done() }

// Wait blocks until background strategy jobs have finished.
func (c *Controller) Wait() { c.wg.Wait() }

// Close cancels background jobs and destroys every chart.
func (c *Controller) Close() {
	// under mu so that no job is added once Wait has started
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
	c.charts.Close()
}

// render executes the region template and commits it with t. A template
// failure is a programming error: it is logged and the region is left alone.
func (c *Controller) render(o *Outcome, t view.Token, data any) bool {
	ok, err := c.deps.Renderer.Render(c.regions, t, data)
	if err != nil {
		c.log.Error("render failed", zap.String("region", t.Region), zap.Error(err))
		return false
	}
	if ok && o != nil {
		o.touch(t.Region)
	}
	return ok
}

// read records that a flow rendered placeholder data.
func read[T any](o *Outcome, r loader.Result[T]) T {
	if r.Fallback() {
		o.fallback = true
	}
	return r.Data
}

// finish emits the single placeholder notice of a flow.
func (c *Controller) finish(o *Outcome) {
	if o.fallback && !o.quiet {
		c.notify(o, view.NotifyInfo, "تم استخدام بيانات تجريبية")
	}
}

// Init runs the first loads of a new page.
func (c *Controller) Init(ctx context.Context) Outcome {
	var o Outcome

	c.renderNav(&o)
	c.closeStock(&o)
	c.render(&o, c.regions.Begin(view.RegionCurrentSignals), view.SignalsView{})
	c.render(&o, c.regions.Begin(view.RegionStrategyResults), view.StrategyView{})
	c.render(&o, c.regions.Begin(view.RegionToasts), view.Toasts{})

	c.loadMarketSummary(ctx, &o)
	c.reloadStocks(ctx, &o, true)
	c.loadTopStocks(&o)
	c.loadSectorsChart(&o)
	c.loadPopularIndicators(ctx, &o)

	c.notify(&o, view.NotifySuccess, "مرحباً بك في تطبيق السوق السعودي")
	c.finish(&o)
	return o
}

// Refresh reloads the market summary and the stock list without notifications.
// It does not ask the backend to re-seed its stocks.
func (c *Controller) Refresh(ctx context.Context) Outcome {
	o := Outcome{quiet: true}
	c.loadMarketSummary(ctx, &o)
	c.reloadStocks(ctx, &o, false)
	return o
}

// ShowSection activates section id. Unknown ids leave the active section unchanged.
func (c *Controller) ShowSection(id string) (Outcome, error) {
	var o Outcome
	if !view.KnownSection(id) {
		return o, fmt.Errorf("%w: %q", core.ErrUnknownSection, id)
	}

	c.mu.Lock()
	c.active = id
	c.mu.Unlock()

	c.renderNav(&o)
	o.Section = id
	return o, nil
}

// Active returns the active section.
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) renderNav(o *Outcome) {
	tok := c.regions.Begin(view.RegionNav)
	c.render(o, tok, view.Nav{Active: c.Active(), Sections: view.Sections})
}

// Region returns the current content of region.
func (c *Controller) Region(region string) (template.HTML, error) {
	if !view.KnownRegion(region) {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownRegion, region)
	}
	return c.regions.Get(region), nil
}

// Chart returns the live chart on canvas.
func (c *Controller) Chart(canvas string) (*chart.Handle, error) {
	h, ok := c.charts.Current(canvas)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrNoChart, canvas)
	}
	return h, nil
}

// Page returns the full page payload.
func (c *Controller) Page() view.PageData {
	return view.PageData{
		Title:      PageTitle,
		Active:     c.Active(),
		Regions:    c.regions.Snapshot(),
		Charts:     c.charts.Canvases(),
		Strategies: mockdata.StrategyTypes,
	}
}

// State is a JSON-friendly summary of a session.
type State struct {
	Session       string            `json:"session" yaml:"session"`
	Active        string            `json:"active" yaml:"active"`
	Stocks        int               `json:"stocks" yaml:"stocks"`
	Term          string            `json:"term,omitempty" yaml:"term,omitempty"`
	Selected      string            `json:"selected,omitempty" yaml:"selected,omitempty"`
	OpenStock     string            `json:"open_stock,omitempty" yaml:"open_stock,omitempty"`
	Strategy      string            `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Charts        []string          `json:"charts" yaml:"charts"`
	LiveCharts    int               `json:"live_charts" yaml:"live_charts"`
	Generations   map[string]uint64 `json:"generations" yaml:"generations"`
	Notifications int               `json:"notifications" yaml:"notifications"`
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	s := State{
		Session:       c.id,
		Active:        c.active,
		Stocks:        len(c.stocks),
		Term:          c.term,
		Selected:      c.selected,
		OpenStock:     c.open,
		Strategy:      c.strategy,
		Notifications: len(c.notes),
	}
	c.mu.Unlock()

	s.Charts = c.charts.Canvases()
	s.LiveCharts = c.charts.Live()
	s.Generations = c.regions.Generations()
	return s
}
