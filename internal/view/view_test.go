package view

import (
	"bytes"
	"html/template"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/tasi/internal/core"
)

type staleCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (s *staleCounter) RecordStale(region string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int{}
	}
	s.counts[region]++
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestRegions_StaleCommitDropped(t *testing.T) {
	stale := &staleCounter{}
	regions := NewRegions(nil, stale)

	older := regions.Begin(RegionStocksGrid)
	newer := regions.Begin(RegionStocksGrid)

	assert.True(t, regions.Commit(newer, "new"))
	assert.False(t, regions.Commit(older, "old"))
	assert.Equal(t, template.HTML("new"), regions.Get(RegionStocksGrid))
	assert.Equal(t, 1, stale.counts[RegionStocksGrid])
}

func TestRegions_StaleEvenIfFirstToFinish(t *testing.T) {
	regions := NewRegions(nil, nil)

	older := regions.Begin(RegionTicker)
	newer := regions.Begin(RegionTicker)

	// the older response arrives first and must not land
	assert.False(t, regions.Commit(older, "old"))
	assert.Equal(t, template.HTML(""), regions.Get(RegionTicker))
	assert.True(t, regions.Commit(newer, "new"))
}

func TestRegions_IndependentRegions(t *testing.T) {
	regions := NewRegions(nil, nil)

	a := regions.Begin(RegionTicker)
	b := regions.Begin(RegionTopStocks)
	assert.True(t, regions.Commit(a, "a"))
	assert.True(t, regions.Commit(b, "b"))
	assert.Equal(t, []string{RegionTicker, RegionTopStocks}, regions.Committed())
	assert.Equal(t, map[string]uint64{RegionTicker: 1, RegionTopStocks: 1}, regions.Generations())
}

func TestRegions_Subscribe(t *testing.T) {
	regions := NewRegions(nil, nil)
	updates, cancel := regions.Subscribe(4)

	tok := regions.Begin(RegionNav)
	regions.Commit(tok, "nav")

	select {
	case u := <-updates:
		assert.Equal(t, RegionNav, u.Region)
		assert.Equal(t, template.HTML("nav"), u.HTML)
		assert.Equal(t, uint64(1), u.Generation)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	cancel()
	cancel()
	_, open := <-updates
	assert.False(t, open)

	// commits after cancel must not panic
	regions.Commit(regions.Begin(RegionNav), "again")
}

func TestRegions_SlowSubscriberDoesNotBlock(t *testing.T) {
	regions := NewRegions(nil, nil)
	_, cancel := regions.Subscribe(1)
	defer cancel()

	for i := 0; i < 10; i++ {
		assert.True(t, regions.Commit(regions.Begin(RegionToasts), "x"))
	}
}

func TestRenderer_LoadsEveryRegion(t *testing.T) {
	r := newRenderer(t)
	for _, region := range RegionIDs {
		assert.NotNil(t, r.tmpl.Lookup(region), region)
	}
}

func TestRenderer_MissingRegionTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"only.html": {Data: []byte(`{{define "nav"}}x{{end}}`)},
	}
	_, err := NewRendererWithFS(fsys)
	assert.Error(t, err)
}

func TestRenderer_EscapesPayloadText(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Fragment(RegionStocksGrid, StockGrid{Stocks: []core.Stock{
		{Symbol: "2222", Name: `<script>alert("x")</script>`, Sector: "الطاقة"},
	}})
	require.NoError(t, err)

	assert.NotContains(t, string(html), "<script>")
	assert.Contains(t, string(html), "&lt;script&gt;")
}

func TestRenderer_EscapesSignalReasons(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Fragment(RegionCurrentSignals, SignalsView{Report: &core.SignalReport{
		Signals:  map[string]any{"RSI_Signal": `<img src=x onerror=alert(1)>`},
		Analysis: &core.Analysis{Recommendation: core.SignalBuy, Confidence: 75, Reasons: []string{"<b>bold</b>"}},
	}})
	require.NoError(t, err)

	assert.NotContains(t, string(html), "<img")
	assert.NotContains(t, string(html), "<b>")
	assert.Contains(t, string(html), "التوصية: شراء")
}

func TestRenderer_RenderReplacesContent(t *testing.T) {
	r := newRenderer(t)
	regions := NewRegions(nil, nil)

	first := StockGrid{Stocks: []core.Stock{{Symbol: "2222", Name: "أرامكو السعودية", Sector: "الطاقة"}}}
	second := StockGrid{Stocks: []core.Stock{{Symbol: "1120", Name: "الراجحي", Sector: "البنوك"}}}

	ok, err := r.Render(regions, regions.Begin(RegionStocksGrid), first)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.Render(regions, regions.Begin(RegionStocksGrid), second)
	require.NoError(t, err)
	require.True(t, ok)

	got := string(regions.Get(RegionStocksGrid))
	assert.Contains(t, got, "الراجحي")
	assert.NotContains(t, got, "أرامكو")
	assert.Equal(t, 1, strings.Count(got, "stock-card"))
}

func TestRenderer_EmptyGrid(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Fragment(RegionStocksGrid, StockGrid{Term: "zzz"})
	require.NoError(t, err)
	assert.Contains(t, string(html), "لا توجد نتائج مطابقة")
}

func TestRenderer_Ticker(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Fragment(RegionTicker, &core.MarketSummary{
		TASI:   core.IndexValue{Value: 11276.91, Change: -32.45, ChangePercent: -0.29},
		Volume: 156789000,
		Trades: 45678,
	})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `id="tasi-value"`)
	assert.Contains(t, out, "156.8 مليون")
	assert.Contains(t, out, "45,678")
	assert.Contains(t, out, "negative")
}

func TestRenderer_ModalClosed(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Fragment(RegionStockModal, (*StockDetail)(nil))
	require.NoError(t, err)
	assert.Empty(t, string(html))

	html, err = r.Fragment(RegionStockModal, &StockDetail{
		Stock:     core.Stock{Symbol: "2222", Name: "أرامكو"},
		Quote:     core.Quote{Price: 35.5, Change: 0.5, ChangePercent: 1.42},
		UpdatedAt: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, string(html), "35.50 ريال")
	assert.Contains(t, string(html), "15 مارس 2024")
	assert.Contains(t, string(html), `id="stock-chart"`)
}

func TestRenderer_PopularIndicatorsOrdered(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Fragment(RegionPopularIndicators, core.PopularIndicators{
		"volume_indicators":   {{Name: "OBV", Code: "OBV"}},
		"trend_indicators":    {{Name: "SMA", Code: "SMA"}},
		"momentum_indicators": {{Name: "RSI", Code: "RSI"}},
	})
	require.NoError(t, err)

	out := string(html)
	trend := strings.Index(out, "مؤشرات الاتجاه")
	momentum := strings.Index(out, "مؤشرات الزخم")
	volume := strings.Index(out, "مؤشرات الحجم")
	assert.True(t, trend >= 0 && trend < momentum && momentum < volume)
}

func TestRenderer_StockOptionsSelected(t *testing.T) {
	r := newRenderer(t)

	html, err := r.Fragment(RegionIndicatorStock, StockOptions{
		Stocks:   []core.Stock{{Symbol: "2222", Name: "أرامكو"}, {Symbol: "1120", Name: "الراجحي"}},
		Selected: "1120",
	})
	require.NoError(t, err)
	assert.Contains(t, string(html), `<option value="1120" selected>`)
	assert.Equal(t, 3, strings.Count(string(html), "<option"))
}

func TestRenderer_Page(t *testing.T) {
	r := newRenderer(t)
	regions := NewRegions(nil, nil)

	nav, err := r.Fragment(RegionNav, Nav{Active: SectionStocks, Sections: Sections})
	require.NoError(t, err)
	regions.Commit(regions.Begin(RegionNav), nav)

	var buf bytes.Buffer
	err = r.Page(&buf, PageData{
		Title:      "تاسي",
		Active:     SectionStocks,
		Regions:    regions.Snapshot(),
		Charts:     []string{"sectorsChart"},
		Strategies: []string{"moving_average"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `<section id="stocks" class="section active">`)
	assert.Contains(t, out, `<section id="dashboard" class="section">`)
	assert.Contains(t, out, `hx-post="/actions/section/indicators"`)
	assert.Contains(t, out, `drawChart("sectorsChart")`)
	assert.Contains(t, out, `hx-post="/actions/strategies/moving_average"`)
}

func TestOOB(t *testing.T) {
	assert.Equal(t,
		template.HTML(`<div id="nav" hx-swap-oob="innerHTML">x</div>`),
		OOB(RegionNav, "x"))
	assert.True(t, strings.HasPrefix(string(OOB(RegionIndicatorStock, "")), "<select"))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "35.50 ريال", FormatPrice(35.5))
	assert.Equal(t, "-1.20 (-0.50%)", FormatChange(-1.2, -0.5))
	assert.Equal(t, "+2.50%", FormatSignedPercent(2.5))
	assert.Equal(t, "-0.50%", FormatSignedPercent(-0.5))
	assert.Equal(t, "156.8 مليون", FormatMillions(156789000))
	assert.Equal(t, "2,850 مليار", FormatBillions(2850000000000))
	assert.Equal(t, "45,678", FormatCount(45678))
	assert.Equal(t, "positive", ChangeClass(0))
	assert.Equal(t, "negative", ToneClass(core.SignalCrossSell))
	assert.Equal(t, "مؤشر القوة النسبية", IndicatorName("RSI"))
	assert.Equal(t, "Stoch", IndicatorName("Stoch"))
	assert.Equal(t, "مؤشرات التقلب", CategoryName("volatility_indicators"))
	assert.Equal(t, "المتوسطات المتحركة", StrategyName("moving_average"))
	assert.Equal(t, "info-circle", ToastIcon("bogus"))
}

func TestKnownIDs(t *testing.T) {
	assert.True(t, KnownRegion(RegionStrategyResults))
	assert.False(t, KnownRegion("sidebar"))
	assert.True(t, KnownSection(SectionIndicators))
	assert.False(t, KnownSection("settings"))
}
