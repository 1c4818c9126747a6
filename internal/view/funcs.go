package view

import (
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/newthinker/tasi/internal/core"
)

var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

var indicatorNames = map[string]string{
	"RSI":  "مؤشر القوة النسبية",
	"MACD": "MACD",
	"MA":   "المتوسطات المتحركة",
	"BB":   "نطاقات بولينجر",
}

var categoryNames = map[string]string{
	"trend_indicators":      "مؤشرات الاتجاه",
	"momentum_indicators":   "مؤشرات الزخم",
	"volatility_indicators": "مؤشرات التقلب",
	"volume_indicators":     "مؤشرات الحجم",
}

var strategyNames = map[string]string{
	"moving_average": "المتوسطات المتحركة",
	"rsi":            "RSI",
	"macd":           "MACD",
}

var toastIcons = map[string]string{
	NotifySuccess: "check-circle",
	NotifyError:   "exclamation-circle",
	NotifyInfo:    "info-circle",
	NotifyWarning: "exclamation-triangle",
}

func lookup(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

// IndicatorName returns the display name of an indicator code.
func IndicatorName(code string) string { return lookup(indicatorNames, code) }

// CategoryName returns the display name of an indicator category.
func CategoryName(category string) string { return lookup(categoryNames, category) }

// StrategyName returns the display name of a strategy key.
func StrategyName(key string) string { return lookup(strategyNames, key) }

// ToastIcon returns the icon of a notification type.
func ToastIcon(kind string) string {
	if v, ok := toastIcons[kind]; ok {
		return v
	}
	return toastIcons[NotifyInfo]
}

// FormatPrice renders a price in riyals.
func FormatPrice(v float64) string {
	return fmt.Sprintf("%.2f ريال", v)
}

// FormatChange renders a change with its percentage.
func FormatChange(change, pct float64) string {
	return fmt.Sprintf("%.2f (%.2f%%)", change, pct)
}

// FormatSignedPercent renders a percentage with an explicit plus sign.
func FormatSignedPercent(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatMillions renders a volume in millions.
func FormatMillions(v float64) string {
	return fmt.Sprintf("%.1f مليون", v/1e6)
}

// FormatBillions renders a market cap in billions, grouped.
func FormatBillions(v float64) string {
	return humanize.CommafWithDigits(math.Round(v/1e8)/10, 1) + " مليار"
}

// FormatCount renders an integer with thousands separators.
func FormatCount(v int64) string {
	return humanize.Comma(v)
}

// FormatDate renders a date with an Arabic month name.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), arabicMonths[t.Month()-1], t.Year())
}

// FormatDateTime renders a timestamp with an Arabic month name.
func FormatDateTime(t time.Time) string {
	return fmt.Sprintf("%s %s", FormatDate(t), t.Format("15:04"))
}

// ChangeClass returns the css class of a signed change.
func ChangeClass(v float64) string {
	if v >= 0 {
		return string(core.TonePositive)
	}
	return string(core.ToneNegative)
}

// ToneClass returns the css class of a signal label.
func ToneClass(label string) string {
	return string(core.ToneOf(label))
}

// Funcs returns the template function map.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"price":         FormatPrice,
		"change":        FormatChange,
		"signedPct":     FormatSignedPercent,
		"millions":      FormatMillions,
		"billions":      FormatBillions,
		"count":         FormatCount,
		"date":          FormatDate,
		"datetime":      FormatDateTime,
		"changeClass":   ChangeClass,
		"toneClass":     ToneClass,
		"indicatorName": IndicatorName,
		"categoryName":  CategoryName,
		"strategyName":  StrategyName,
		"toastIcon":     ToastIcon,
		"round1":        func(v float64) string { return humanize.FtoaWithDigits(v, 1) },
	}
}
