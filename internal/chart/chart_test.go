package chart

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tasi/internal/core"
)

type fakeGauge struct {
	mu sync.Mutex
	v  float64
}

func (g *fakeGauge) Add(d float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.v += d
}

func TestHolder_DrawTwiceLeavesOneLive(t *testing.T) {
	gauge := &fakeGauge{}
	h := NewHolder(gauge)

	first := h.Draw(CanvasStock, Line{Values: []float64{1, 2}})
	second := h.Draw(CanvasStock, Line{Values: []float64{3, 4}})

	assert.False(t, first.Live())
	assert.True(t, second.Live())
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, 1, h.Live())
	assert.Equal(t, 1.0, gauge.v)

	cur, ok := h.Current(CanvasStock)
	require.True(t, ok)
	assert.Same(t, second, cur)
}

func TestHolder_DestroyIdempotent(t *testing.T) {
	gauge := &fakeGauge{}
	h := NewHolder(gauge)

	handle := h.Draw(CanvasIndicators, Line{})
	h.Destroy(handle)
	h.Destroy(handle)
	h.Destroy(nil)

	assert.False(t, handle.Live())
	assert.Equal(t, 0, h.Live())
	assert.Equal(t, 0.0, gauge.v)
}

func TestHolder_DestroySupersededKeepsNewer(t *testing.T) {
	h := NewHolder(nil)

	old := h.Draw(CanvasStock, Line{})
	newer := h.Draw(CanvasStock, Line{})
	h.Destroy(old)

	assert.True(t, newer.Live())
	cur, ok := h.Current(CanvasStock)
	require.True(t, ok)
	assert.Same(t, newer, cur)
}

func TestHolder_CanvasesIndependent(t *testing.T) {
	h := NewHolder(nil)
	h.Draw(CanvasStock, Line{})
	h.Draw(CanvasSectors, SectorBreakdown(nil))
	h.Draw(CanvasIndicators, Line{})

	assert.Equal(t, []string{CanvasIndicators, CanvasSectors, CanvasStock}, h.Canvases())

	h.DestroyCanvas(CanvasStock)
	assert.Equal(t, 2, h.Live())

	h.Close()
	assert.Equal(t, 0, h.Live())
}

func TestHolder_ConcurrentDraws(t *testing.T) {
	gauge := &fakeGauge{}
	h := NewHolder(gauge)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handle := h.Draw(CanvasStock, Line{})
			if i%2 == 0 {
				h.Destroy(handle)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, h.Live(), 1)
	assert.Equal(t, float64(h.Live()), gauge.v)
}

func TestLine_Config(t *testing.T) {
	bounded := Line{Label: "RSI", Labels: []string{"a", "b"}, Values: []float64{math.NaN(), 50}, Bounded: true}.Config()
	b, err := json.Marshal(bounded)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"min":0`)
	assert.Contains(t, string(b), `"max":100`)
	assert.Contains(t, string(b), `"data":[null,50]`)

	free := Line{Values: []float64{1}}.Config()
	b, err = json.Marshal(free)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"beginAtZero":false`)
	assert.NotContains(t, string(b), `"max":100`)
}

func TestBreakdown_Config(t *testing.T) {
	cfg := SectorBreakdown([]core.SectorShare{{Label: "البنوك", Weight: 25}, {Label: "الطاقة", Weight: 20}}).Config()
	assert.Equal(t, "doughnut", cfg["type"])

	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"backgroundColor":["#667eea","#764ba2"]`)
}

func TestPriceLine(t *testing.T) {
	d, _ := core.ParseDay("2024-01-01")
	l := PriceLine([]core.PricePoint{{Date: d, Close: 10}, {Date: d.AddDays(1), Close: 11}})
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, l.Labels)
	assert.Equal(t, []float64{10, 11}, l.Values)
	assert.False(t, l.Bounded)
}

func TestIndicatorLine(t *testing.T) {
	gen := func(n int) []float64 { return make([]float64, n) }
	long := make([]float64, 100)
	for i := range long {
		long[i] = float64(i)
	}

	tests := []struct {
		name        string
		series      core.IndicatorSeries
		chosen      string
		wantLabel   string
		wantBounded bool
		wantLen     int
		wantLast    float64
	}{
		{
			name:        "prefers RSI_14",
			series:      core.IndicatorSeries{"RSI_14": long, "MACD": {1}},
			chosen:      "MACD",
			wantLabel:   "RSI",
			wantBounded: true,
			wantLen:     30,
			wantLast:    99,
		},
		{
			name:      "chosen indicator",
			series:    core.IndicatorSeries{"BB_Upper": {1, 2}, "MACD": {3, 4}},
			chosen:    "MACD",
			wantLabel: "MACD",
			wantLen:   2,
			wantLast:  4,
		},
		{
			name:        "stochastic bounded",
			series:      core.IndicatorSeries{"Stoch_D": {10}, "Stoch_K": {20}},
			chosen:      "Stochastic",
			wantLabel:   "Stoch_D",
			wantBounded: true,
			wantLen:     1,
			wantLast:    10,
		},
		{
			name:        "generated when empty",
			series:      core.IndicatorSeries{},
			chosen:      "all",
			wantLabel:   "RSI",
			wantBounded: true,
			wantLen:     30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := IndicatorLine(tt.series, tt.chosen, gen)
			assert.Equal(t, tt.wantLabel, l.Label)
			assert.Equal(t, tt.wantBounded, l.Bounded)
			require.Len(t, l.Values, tt.wantLen)
			require.Len(t, l.Labels, tt.wantLen)
			assert.Equal(t, "يوم 1", l.Labels[0])
			assert.Equal(t, tt.wantLast, l.Values[len(l.Values)-1])
		})
	}
}
