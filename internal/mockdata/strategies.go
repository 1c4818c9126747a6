package mockdata

import "github.com/newthinker/tasi/internal/core"

// Strategy keys.
const (
	StrategyMovingAverage = "moving_average"
	StrategyRSI           = "rsi"
	StrategyMACD          = "macd"
)

// StrategyTypes lists the known strategies in display order.
var StrategyTypes = []string{StrategyMovingAverage, StrategyRSI, StrategyMACD}

var strategies = map[string]core.StrategyResult{
	StrategyMovingAverage: {
		Name: "استراتيجية المتوسطات المتحركة",
		Signals: []core.StrategySignal{
			{Stock: "أرامكو (2222)", Signal: core.SignalBuy, Confidence: 85},
			{Stock: "الراجحي (1120)", Signal: core.SignalWait, Confidence: 60},
			{Stock: "سابك (2030)", Signal: core.SignalSell, Confidence: 75},
		},
		Performance: core.Performance{TotalSignals: 15, Successful: 10, SuccessRate: 67},
	},
	StrategyRSI: {
		Name: "استراتيجية RSI",
		Signals: []core.StrategySignal{
			{Stock: "الأهلي (1180)", Signal: core.SignalBuy, Confidence: 90},
			{Stock: "معادن (1211)", Signal: core.SignalBuy, Confidence: 80},
			{Stock: "الاتصالات (7010)", Signal: core.SignalNeutral, Confidence: 55},
		},
		Performance: core.Performance{TotalSignals: 12, Successful: 9, SuccessRate: 75},
	},
	StrategyMACD: {
		Name: "استراتيجية MACD",
		Signals: []core.StrategySignal{
			{Stock: "بترو رابغ (2380)", Signal: core.SignalSell, Confidence: 85},
			{Stock: "الأهلي التجاري (1140)", Signal: core.SignalBuy, Confidence: 70},
		},
		Performance: core.Performance{TotalSignals: 8, Successful: 5, SuccessRate: 63},
	},
}

// NormalizeStrategy maps unknown strategy keys to the moving average one.
func NormalizeStrategy(key string) string {
	if _, ok := strategies[key]; ok {
		return key
	}
	return StrategyMovingAverage
}

// Strategy returns the canned result of the strategy key, falling back to
// the moving average strategy for unknown keys.
func Strategy(key string) core.StrategyResult {
	r := strategies[NormalizeStrategy(key)]
	r.Signals = append([]core.StrategySignal(nil), r.Signals...)
	return r
}

// TopStocks returns the canned top performers.
func TopStocks() []core.TopStock {
	return []core.TopStock{
		{Symbol: "2222", Name: "أرامكو", Price: 35.50, Change: 2.5},
		{Symbol: "1120", Name: "الراجحي", Price: 85.20, Change: 1.8},
		{Symbol: "2030", Name: "سابك", Price: 95.80, Change: -0.5},
		{Symbol: "1180", Name: "الأهلي", Price: 42.30, Change: 3.2},
		{Symbol: "1211", Name: "معادن", Price: 65.40, Change: 1.1},
	}
}

// Sectors returns the fixed sector composition.
func Sectors() []core.SectorShare {
	return []core.SectorShare{
		{Label: "البنوك", Weight: 25},
		{Label: "الطاقة", Weight: 20},
		{Label: "البتروكيماويات", Weight: 15},
		{Label: "الاتصالات", Weight: 12},
		{Label: "المواد الأساسية", Weight: 10},
		{Label: "أخرى", Weight: 18},
	}
}
