package core

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay_JSONRoundTrip(t *testing.T) {
	d := NewDay(time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-15"`, string(b))

	var back Day
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d.Time))
}

func TestParseDay_AcceptsTimestamps(t *testing.T) {
	d, err := ParseDay("2024-03-15T10:20:30")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", d.String())

	_, err = ParseDay("15/03/2024")
	assert.Error(t, err)
}

func TestDay_AddDays(t *testing.T) {
	d := NewDay(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
}

func TestIndicatorSeries_UnmarshalSkipsScalars(t *testing.T) {
	payload := []byte(`{"RSI_14":[null, 45.5, 60], "indicator":"RSI", "period":14}`)

	var s IndicatorSeries
	require.NoError(t, json.Unmarshal(payload, &s))

	require.Len(t, s, 1)
	rsi := s["RSI_14"]
	require.Len(t, rsi, 3)
	assert.True(t, math.IsNaN(rsi[0]))
	assert.Equal(t, 45.5, rsi[1])
}

func TestIndicatorSeries_MarshalNaNAsNull(t *testing.T) {
	s := IndicatorSeries{"SMA_20": {math.NaN(), 10}}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"SMA_20":[null,10]}`, string(b))
}

func TestToneOf(t *testing.T) {
	tests := []struct {
		label string
		want  Tone
	}{
		{SignalBuy, TonePositive},
		{SignalCrossBuy, TonePositive},
		{SignalTrendUp, TonePositive},
		{SignalSell, ToneNegative},
		{SignalCrossSell, ToneNegative},
		{SignalTrendDown, ToneNegative},
		{SignalOversold, ToneNegative},
		{SignalNeutral, ToneNeutral},
		{SignalWait, ToneNeutral},
		{"", ToneNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ToneOf(tt.label))
		})
	}
}

func TestSignalReport_SignalSet(t *testing.T) {
	r := SignalReport{Signals: map[string]any{
		"Stoch_Signal": SignalNeutral,
		"MA_Signal":    SignalTrendUp,
		"RSI_Value":    45.0,
		"RSI_Signal":   SignalNeutral,
		"MACD_Signal":  SignalCrossBuy,
		"BB_Signal":    12.0,
	}}

	set := r.SignalSet()
	require.Len(t, set, 4)
	assert.Equal(t, []string{"RSI", "MACD", "MA", "Stoch"},
		[]string{set[0].Indicator, set[1].Indicator, set[2].Indicator, set[3].Indicator})
	assert.Equal(t, SignalCrossBuy, set[1].Value)
}

func TestPopularIndicators_Categories(t *testing.T) {
	p := PopularIndicators{
		"volume_indicators":   nil,
		"custom":              nil,
		"trend_indicators":    nil,
		"momentum_indicators": nil,
	}
	assert.Equal(t,
		[]string{"trend_indicators", "momentum_indicators", "volume_indicators", "custom"},
		p.Categories())
}
