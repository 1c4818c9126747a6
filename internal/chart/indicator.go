package chart

import (
	"fmt"
	"strings"

	"github.com/newthinker/tasi/internal/core"
)

// IndicatorWindow is how many trailing points the indicator chart shows.
const IndicatorWindow = 30

const preferredSeries = "RSI_14"

// Oscillator reports whether a series lives on a 0-100 scale.
func Oscillator(name string) bool {
	return strings.HasPrefix(name, "RSI") || strings.HasPrefix(name, "Stoch")
}

// IndicatorLine picks the series to chart from an indicator payload: RSI_14
// when present, otherwise the first series of the chosen indicator, otherwise
// generate(IndicatorWindow). The chart shows the trailing IndicatorWindow points.
func IndicatorLine(series core.IndicatorSeries, chosen string, generate func(n int) []float64) Line {
	name, values := pickSeries(series, chosen)
	if values == nil {
		return dayLine("RSI", generate(IndicatorWindow), true)
	}
	if len(values) > IndicatorWindow {
		values = values[len(values)-IndicatorWindow:]
	}
	label := name
	if name == preferredSeries {
		label = "RSI"
	}
	return dayLine(label, values, Oscillator(name))
}

func pickSeries(series core.IndicatorSeries, chosen string) (string, []float64) {
	if v, ok := series[preferredSeries]; ok && len(v) > 0 {
		return preferredSeries, v
	}
	names := series.Names()
	if chosen != "" && chosen != "all" {
		for _, name := range names {
			if strings.HasPrefix(name, chosen) && len(series[name]) > 0 {
				return name, series[name]
			}
		}
	}
	for _, name := range names {
		if len(series[name]) > 0 {
			return name, series[name]
		}
	}
	return "", nil
}

func dayLine(label string, values []float64, bounded bool) Line {
	labels := make([]string, len(values))
	for i := range labels {
		labels[i] = fmt.Sprintf("يوم %d", i+1)
	}
	return Line{Label: label, Labels: labels, Values: values, Bounded: bounded}
}
