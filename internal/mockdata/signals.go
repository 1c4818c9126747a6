package mockdata

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/newthinker/tasi/internal/core"
)

// Signals returns the canned offline signal report.
func (g *Generator) Signals(symbol string) core.SignalReport {
	return core.SignalReport{
		Symbol: symbol,
		Signals: map[string]any{
			"RSI_Signal":  core.SignalNeutral,
			"RSI_Value":   45.0,
			"MACD_Signal": core.SignalCrossBuy,
			"MA_Signal":   core.SignalTrendUp,
		},
		Analysis: &core.Analysis{
			Recommendation: core.SignalBuy,
			Confidence:     75,
			Reasons:        []string{"MACD يعطي إشارة شراء", "الاتجاه العام صاعد"},
		},
		Timestamp: g.now().Format(time.RFC3339),
	}
}

type rule struct {
	key        string
	buy, sell  string
	buyReason  string
	sellReason string
}

var analysisRules = []rule{
	{key: "RSI_Signal", buy: core.SignalOversold, sell: core.SignalOverbought,
		buyReason: "RSI في منطقة ذروة البيع (%v)", sellReason: "RSI في منطقة ذروة الشراء (%v)"},
	{key: "MACD_Signal", buy: core.SignalCrossBuy, sell: core.SignalCrossSell,
		buyReason: "MACD يعطي إشارة شراء", sellReason: "MACD يعطي إشارة بيع"},
	{key: "MA_Signal", buy: core.SignalTrendUp, sell: core.SignalTrendDown,
		buyReason: "الاتجاه العام صاعد", sellReason: "الاتجاه العام هابط"},
	{key: "BB_Signal", buy: core.SignalOversold, sell: core.SignalOverbought,
		buyReason: "السعر عند الحد السفلي لنطاقات بولينجر", sellReason: "السعر عند الحد العلوي لنطاقات بولينجر"},
}

// Analyze tallies the well-known signals into a recommendation. It mirrors
// the backend so the mock API answers with the same vocabulary.
func Analyze(signals map[string]any) core.Analysis {
	if len(signals) == 0 {
		return core.Analysis{
			Recommendation: core.SignalUndetermined,
			Reasons:        []string{"لا توجد إشارات كافية"},
		}
	}

	var a core.Analysis
	a.Reasons = []string{}
	for _, r := range analysisRules {
		v, ok := signals[r.key]
		if !ok {
			continue
		}
		label, _ := v.(string)
		switch label {
		case r.buy:
			a.BuySignals++
			a.Reasons = append(a.Reasons, reason(r.buyReason, signals["RSI_Value"]))
		case r.sell:
			a.SellSignals++
			a.Reasons = append(a.Reasons, reason(r.sellReason, signals["RSI_Value"]))
		default:
			a.NeutralSignals++
		}
	}

	total := a.BuySignals + a.SellSignals + a.NeutralSignals
	switch {
	case total == 0:
		a.Recommendation = core.SignalUndetermined
	case a.BuySignals > a.SellSignals:
		a.Recommendation = core.SignalBuy
		a.Confidence = float64(a.BuySignals) / float64(total) * 100
	case a.SellSignals > a.BuySignals:
		a.Recommendation = core.SignalSell
		a.Confidence = float64(a.SellSignals) / float64(total) * 100
	default:
		a.Recommendation = core.SignalWait
		a.Confidence = 50
	}
	a.Confidence = math.Round(a.Confidence*10) / 10
	return a
}

func reason(format string, value any) string {
	if value == nil {
		value = "N/A"
	}
	if !strings.Contains(format, "%v") {
		return format
	}
	return fmt.Sprintf(format, value)
}

// PopularIndicators returns the short offline catalog.
func (g *Generator) PopularIndicators() core.PopularIndicators {
	return core.PopularIndicators{
		"trend_indicators": {
			{Name: "المتوسط المتحرك البسيط", Code: "SMA", Description: "يحسب متوسط الأسعار خلال فترة زمنية محددة"},
			{Name: "MACD", Code: "MACD", Description: "مؤشر تقارب وتباعد المتوسطات المتحركة"},
		},
		"momentum_indicators": {
			{Name: "مؤشر القوة النسبية", Code: "RSI", Description: "يقيس قوة حركة السعر"},
		},
	}
}

// IndicatorCatalog returns the full catalog the backend serves.
func IndicatorCatalog() core.PopularIndicators {
	return core.PopularIndicators{
		"trend_indicators": {
			{Name: "المتوسط المتحرك البسيط", Code: "SMA", Description: "يحسب متوسط الأسعار خلال فترة زمنية محددة", Usage: "تحديد الاتجاه العام للسعر"},
			{Name: "المتوسط المتحرك الأسي", Code: "EMA", Description: "يعطي وزناً أكبر للأسعار الحديثة", Usage: "أكثر حساسية للتغيرات السعرية"},
			{Name: "MACD", Code: "MACD", Description: "مؤشر تقارب وتباعد المتوسطات المتحركة", Usage: "تحديد نقاط الدخول والخروج"},
		},
		"momentum_indicators": {
			{Name: "مؤشر القوة النسبية", Code: "RSI", Description: "يقيس قوة حركة السعر", Usage: "تحديد مناطق ذروة الشراء والبيع"},
			{Name: "الستوكاستك", Code: "Stochastic", Description: "يقارن سعر الإغلاق بنطاق الأسعار", Usage: "تحديد نقاط التحول في السعر"},
		},
		"volatility_indicators": {
			{Name: "نطاقات بولينجر", Code: "BB", Description: "نطاقات حول المتوسط المتحرك", Usage: "تحديد مستويات الدعم والمقاومة الديناميكية"},
			{Name: "متوسط المدى الحقيقي", Code: "ATR", Description: "يقيس تقلبات السعر", Usage: "تحديد مستويات وقف الخسارة"},
		},
		"volume_indicators": {
			{Name: "مؤشر التوازن الحجمي", Code: "OBV", Description: "يربط بين الحجم واتجاه السعر", Usage: "تأكيد الاتجاهات السعرية"},
			{Name: "متوسط حجم التداول", Code: "Volume_SMA", Description: "متوسط حجم التداول خلال فترة", Usage: "تحديد قوة الحركة السعرية"},
		},
	}
}
