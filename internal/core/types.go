package core

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// DayLayout is the wire format of calendar dates.
const DayLayout = "2006-01-02"

// Day is a calendar date without time of day.
type Day struct {
	time.Time
}

// NewDay truncates t to its calendar date in UTC.
func NewDay(t time.Time) Day {
	y, m, d := t.Date()
	return Day{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a YYYY-MM-DD date, tolerating full timestamps.
func ParseDay(s string) (Day, error) {
	for _, layout := range []string{DayLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDay(t), nil
		}
	}
	return Day{}, fmt.Errorf("invalid date %q", s)
}

// AddDays returns the day n calendar days later.
func (d Day) AddDays(n int) Day {
	return Day{d.Time.AddDate(0, 0, n)}
}

func (d Day) String() string {
	return d.Format(DayLayout)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML keeps dates readable in YAML dumps.
func (d Day) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Stock is a listed company in the working set.
type Stock struct {
	ID        int     `json:"id,omitempty" yaml:"id,omitempty"`
	Symbol    string  `json:"symbol" yaml:"symbol"`
	Name      string  `json:"name" yaml:"name"`
	Sector    string  `json:"sector" yaml:"sector"`
	MarketCap float64 `json:"market_cap,omitempty" yaml:"market_cap,omitempty"`
}

// IndexValue is the level of a market index.
type IndexValue struct {
	Value         float64 `json:"value" yaml:"value"`
	Change        float64 `json:"change" yaml:"change"`
	ChangePercent float64 `json:"change_percent" yaml:"change_percent"`
}

// MarketSummary is the market ticker payload.
type MarketSummary struct {
	TASI      IndexValue `json:"tasi_index" yaml:"tasi_index"`
	MarketCap float64    `json:"market_cap,omitempty" yaml:"market_cap,omitempty"`
	Volume    float64    `json:"volume" yaml:"volume"`
	Trades    int64      `json:"trades" yaml:"trades"`
	Advancing int        `json:"advancing,omitempty" yaml:"advancing,omitempty"`
	Declining int        `json:"declining,omitempty" yaml:"declining,omitempty"`
	Unchanged int        `json:"unchanged,omitempty" yaml:"unchanged,omitempty"`
	Timestamp string     `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Quote is the latest price of a single stock.
type Quote struct {
	Symbol        string  `json:"symbol" yaml:"symbol"`
	Price         float64 `json:"price" yaml:"price"`
	Change        float64 `json:"change" yaml:"change"`
	ChangePercent float64 `json:"change_percent" yaml:"change_percent"`
	Volume        int64   `json:"volume,omitempty" yaml:"volume,omitempty"`
	Timestamp     string  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Source        string  `json:"source,omitempty" yaml:"source,omitempty"`
}

// PricePoint is one day of a price history, ordered oldest to newest in a series.
type PricePoint struct {
	Date   Day     `json:"date" yaml:"date"`
	Open   float64 `json:"open,omitempty" yaml:"open,omitempty"`
	High   float64 `json:"high,omitempty" yaml:"high,omitempty"`
	Low    float64 `json:"low,omitempty" yaml:"low,omitempty"`
	Close  float64 `json:"close" yaml:"close"`
	Volume int64   `json:"volume,omitempty" yaml:"volume,omitempty"`
}

// IndicatorSeries maps an indicator name to values aligned by trading day.
// Missing values are NaN.
type IndicatorSeries map[string][]float64

// UnmarshalJSON keeps only array-valued entries; scalar entries are metadata.
func (s *IndicatorSeries) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(IndicatorSeries, len(raw))
	for name, msg := range raw {
		var values []*float64
		if err := json.Unmarshal(msg, &values); err != nil {
			continue
		}
		series := make([]float64, len(values))
		for i, v := range values {
			if v == nil {
				series[i] = math.NaN()
				continue
			}
			series[i] = *v
		}
		out[name] = series
	}
	*s = out
	return nil
}

// MarshalJSON writes NaN as null.
func (s IndicatorSeries) MarshalJSON() ([]byte, error) {
	out := make(map[string][]*float64, len(s))
	for name, series := range s {
		out[name] = NullableValues(series)
	}
	return json.Marshal(out)
}

// Names returns the indicator names in lexical order.
func (s IndicatorSeries) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NullableValues converts NaN entries to nil pointers for JSON output.
func NullableValues(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			continue
		}
		v := values[i]
		out[i] = &v
	}
	return out
}

// IndicatorReport is the payload of an indicator calculation.
type IndicatorReport struct {
	Symbol     string          `json:"symbol" yaml:"symbol"`
	Indicator  string          `json:"indicator,omitempty" yaml:"indicator,omitempty"`
	Indicators IndicatorSeries `json:"indicators" yaml:"indicators"`
	Signals    map[string]any  `json:"signals,omitempty" yaml:"signals,omitempty"`
	DataPoints int             `json:"data_points,omitempty" yaml:"data_points,omitempty"`
	Period     string          `json:"period,omitempty" yaml:"period,omitempty"`
}

// Signal vocabulary used by the backend.
const (
	SignalBuy          = "شراء"
	SignalSell         = "بيع"
	SignalWait         = "انتظار"
	SignalNeutral      = "محايد"
	SignalCrossBuy     = "إشارة شراء"
	SignalCrossSell    = "إشارة بيع"
	SignalTrendUp      = "اتجاه صاعد"
	SignalTrendDown    = "اتجاه هابط"
	SignalOverbought   = "ذروة شراء"
	SignalOversold     = "ذروة بيع"
	SignalUndetermined = "غير محدد"
)

// Tone is the display polarity of a signal label.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// ToneOf classifies a signal label by the words it contains.
func ToneOf(label string) Tone {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "شراء") || strings.Contains(l, "صاعد"):
		return TonePositive
	case strings.Contains(l, "بيع") || strings.Contains(l, "هابط"):
		return ToneNegative
	default:
		return ToneNeutral
	}
}

// IndicatorSignal is the categorical signal of one indicator.
type IndicatorSignal struct {
	Indicator string `json:"indicator" yaml:"indicator"`
	Value     string `json:"value" yaml:"value"`
}

// Analysis is the backend's overall recommendation.
type Analysis struct {
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
	Confidence     float64  `json:"confidence" yaml:"confidence"`
	BuySignals     int      `json:"buy_signals,omitempty" yaml:"buy_signals,omitempty"`
	SellSignals    int      `json:"sell_signals,omitempty" yaml:"sell_signals,omitempty"`
	NeutralSignals int      `json:"neutral_signals,omitempty" yaml:"neutral_signals,omitempty"`
	Reasons        []string `json:"reasons" yaml:"reasons"`
}

// SignalReport is the payload of the signals endpoint.
type SignalReport struct {
	Symbol    string         `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Signals   map[string]any `json:"signals" yaml:"signals"`
	Analysis  *Analysis      `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Timestamp string         `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

const signalSuffix = "_Signal"

var signalOrder = map[string]int{"RSI": 0, "MACD": 1, "MA": 2, "BB": 3}

// SignalSet returns the per-indicator signals, well-known indicators first.
func (r SignalReport) SignalSet() []IndicatorSignal {
	var set []IndicatorSignal
	for key, v := range r.Signals {
		if !strings.HasSuffix(key, signalSuffix) {
			continue
		}
		label, ok := v.(string)
		if !ok {
			continue
		}
		set = append(set, IndicatorSignal{
			Indicator: strings.TrimSuffix(key, signalSuffix),
			Value:     label,
		})
	}
	sort.Slice(set, func(i, j int) bool {
		oi, iKnown := signalOrder[set[i].Indicator]
		oj, jKnown := signalOrder[set[j].Indicator]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown != jKnown:
			return iKnown
		default:
			return set[i].Indicator < set[j].Indicator
		}
	})
	return set
}

// IndicatorInfo describes an indicator in the catalog.
type IndicatorInfo struct {
	Name        string `json:"name" yaml:"name"`
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
	Usage       string `json:"usage,omitempty" yaml:"usage,omitempty"`
}

// PopularIndicators groups the indicator catalog by category.
type PopularIndicators map[string][]IndicatorInfo

var categoryOrder = []string{"trend_indicators", "momentum_indicators", "volatility_indicators", "volume_indicators"}

// Categories returns the categories present, known ones first.
func (p PopularIndicators) Categories() []string {
	var out []string
	seen := make(map[string]bool, len(p))
	for _, c := range categoryOrder {
		if _, ok := p[c]; ok {
			out = append(out, c)
			seen[c] = true
		}
	}
	var rest []string
	for c := range p {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// StrategySignal is one recommendation produced by a strategy.
type StrategySignal struct {
	Stock      string `json:"stock" yaml:"stock"`
	Signal     string `json:"signal" yaml:"signal"`
	Confidence int    `json:"confidence" yaml:"confidence"`
}

// Performance aggregates the hit rate of a strategy.
type Performance struct {
	TotalSignals int `json:"total_signals" yaml:"total_signals"`
	Successful   int `json:"successful" yaml:"successful"`
	SuccessRate  int `json:"success_rate" yaml:"success_rate"`
}

// StrategyResult is a named bundle of signals with its performance.
type StrategyResult struct {
	Name        string           `json:"name" yaml:"name"`
	Signals     []StrategySignal `json:"signals" yaml:"signals"`
	Performance Performance      `json:"performance" yaml:"performance"`
}

// TopStock is an entry of the top performers list.
type TopStock struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Name   string  `json:"name" yaml:"name"`
	Price  float64 `json:"price" yaml:"price"`
	Change float64 `json:"change" yaml:"change"`
}

// SectorShare is one slice of the sector composition.
type SectorShare struct {
	Label  string  `json:"label" yaml:"label"`
	Weight float64 `json:"weight" yaml:"weight"`
}
