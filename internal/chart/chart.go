// Package chart tracks the live chart on each canvas and builds the
// Chart.js configuration the browser draws.
package chart

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Canvas ids used by the dashboard.
const (
	CanvasStock      = "stock-chart"
	CanvasIndicators = "indicators-chart"
	CanvasSectors    = "sectorsChart"
)

// Gauge is the subset of a prometheus gauge the holder updates.
type Gauge interface {
	Add(float64)
}

// Handle is one drawn chart.
type Handle struct {
	id        string
	canvas    string
	spec      Spec
	destroyed atomic.Bool
}

// ID returns the unique id of this drawing.
func (h *Handle) ID() string { return h.id }

// Canvas returns the canvas the chart is drawn on.
func (h *Handle) Canvas() string { return h.canvas }

// Spec returns what was drawn.
func (h *Handle) Spec() Spec { return h.spec }

// Live reports whether the handle has not been destroyed.
func (h *Handle) Live() bool { return !h.destroyed.Load() }

// Config returns the Chart.js configuration of the handle.
func (h *Handle) Config() Config { return h.spec.Config() }

// Holder keeps at most one live handle per canvas.
type Holder struct {
	mu    sync.Mutex
	live  map[string]*Handle
	gauge Gauge
}

// NewHolder creates an empty holder. gauge may be nil.
func NewHolder(gauge Gauge) *Holder {
	return &Holder{live: make(map[string]*Handle), gauge: gauge}
}

func (c *Holder) track(delta int) {
	if c.gauge != nil && delta != 0 {
		c.gauge.Add(float64(delta))
	}
}

// Draw destroys the canvas's current handle, if any, and returns a new live one.
func (c *Holder) Draw(canvas string, spec Spec) *Handle {
	h := &Handle{id: uuid.NewString(), canvas: canvas, spec: spec}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.live[canvas]; ok {
		prev.destroyed.Store(true)
		c.track(-1)
	}
	c.live[canvas] = h
	c.track(1)
	return h
}

// Destroy releases h. Destroying a handle twice, or one already replaced by a
// newer drawing, is a no-op.
func (c *Holder) Destroy(h *Handle) {
	if h == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !h.destroyed.CompareAndSwap(false, true) {
		return
	}
	if cur, ok := c.live[h.canvas]; ok && cur == h {
		delete(c.live, h.canvas)
		c.track(-1)
	}
}

// DestroyCanvas destroys whatever is live on canvas.
func (c *Holder) DestroyCanvas(canvas string) {
	c.mu.Lock()
	h := c.live[canvas]
	c.mu.Unlock()
	c.Destroy(h)
}

// Current returns the live handle on canvas.
func (c *Holder) Current(canvas string) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.live[canvas]
	return h, ok
}

// Live returns the number of live handles.
func (c *Holder) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// Canvases returns the canvases with a live chart, sorted.
func (c *Holder) Canvases() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.live))
	for canvas := range c.live {
		out = append(out, canvas)
	}
	sort.Strings(out)
	return out
}

// Close destroys every live handle.
func (c *Holder) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for canvas, h := range c.live {
		h.destroyed.Store(true)
		delete(c.live, canvas)
		c.track(-1)
	}
}
