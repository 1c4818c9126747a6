package chart

import "github.com/newthinker/tasi/internal/core"

// Config is a Chart.js configuration object.
type Config map[string]any

// Spec describes what to draw.
type Spec interface {
	Kind() string
	Config() Config
}

// Palette is the fixed colour set of breakdown charts.
var Palette = []string{"#667eea", "#764ba2", "#f093fb", "#f5576c", "#4facfe", "#43e97b"}

const (
	lineColor = "#667eea"
	lineFill  = "rgba(102, 126, 234, 0.1)"
)

// Line is a continuous series. Bounded pins the y axis to [0,100].
type Line struct {
	Label   string
	Labels  []string
	Values  []float64
	Bounded bool
}

// Kind implements Spec.
func (Line) Kind() string { return "line" }

// Config implements Spec.
func (l Line) Config() Config {
	y := map[string]any{
		"grid": map[string]any{"color": "rgba(0, 0, 0, 0.1)"},
	}
	if l.Bounded {
		y["min"] = 0
		y["max"] = 100
	} else {
		y["beginAtZero"] = false
	}

	return Config{
		"type": "line",
		"data": map[string]any{
			"labels": nonNil(l.Labels),
			"datasets": []map[string]any{{
				"label":           l.Label,
				"data":            core.NullableValues(l.Values),
				"borderColor":     lineColor,
				"backgroundColor": lineFill,
				"borderWidth":     2,
				"fill":            true,
				"tension":         0.4,
			}},
		},
		"options": map[string]any{
			"responsive": true,
			"plugins": map[string]any{
				"legend": map[string]any{"display": true},
			},
			"scales": map[string]any{"y": y},
		},
	}
}

// Breakdown is a proportional doughnut.
type Breakdown struct {
	Labels []string
	Values []float64
}

// Kind implements Spec.
func (Breakdown) Kind() string { return "doughnut" }

// Config implements Spec.
func (b Breakdown) Config() Config {
	colors := make([]string, len(b.Values))
	for i := range colors {
		colors[i] = Palette[i%len(Palette)]
	}

	return Config{
		"type": "doughnut",
		"data": map[string]any{
			"labels": nonNil(b.Labels),
			"datasets": []map[string]any{{
				"data":            core.NullableValues(b.Values),
				"backgroundColor": colors,
				"borderWidth":     0,
			}},
		},
		"options": map[string]any{
			"responsive": true,
			"plugins": map[string]any{
				"legend": map[string]any{
					"position": "bottom",
					"labels":   map[string]any{"padding": 20, "usePointStyle": true},
				},
			},
		},
	}
}

// PriceLine charts closing prices by date.
func PriceLine(points []core.PricePoint) Line {
	l := Line{
		Label:  "سعر الإغلاق",
		Labels: make([]string, len(points)),
		Values: make([]float64, len(points)),
	}
	for i, p := range points {
		l.Labels[i] = p.Date.String()
		l.Values[i] = p.Close
	}
	return l
}

// SectorBreakdown charts the sector composition.
func SectorBreakdown(shares []core.SectorShare) Breakdown {
	b := Breakdown{Labels: make([]string, len(shares)), Values: make([]float64, len(shares))}
	for i, s := range shares {
		b.Labels[i] = s.Label
		b.Values[i] = s.Weight
	}
	return b
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
