package indicator

import (
	"math"
	"testing"
)

func TestSMA_Calculate(t *testing.T) {
	closes := []float64{32.1, 32.4, 32.7, 33.0, 33.3, 33.6}

	sma := SMA(closes, 3)

	// each window of three closes rises by 0.3
	expected := []float64{32.4, 32.7, 33.0, 33.3}

	if len(sma) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(sma))
	}

	for i, v := range expected {
		if !almostEqual(sma[i], v, 1e-9) {
			t.Errorf("sma[%d] = %f, want %f", i, sma[i], v)
		}
	}
}

func TestSMA_NotEnoughData(t *testing.T) {
	tests := []struct {
		name   string
		period int
	}{
		{"window longer than series", 5},
		{"zero period", 0},
		{"negative period", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sma := SMA([]float64{32.1, 32.4}, tt.period); len(sma) != 0 {
				t.Errorf("expected empty slice, got %d values", len(sma))
			}
		})
	}
}

func TestEMA_Calculate(t *testing.T) {
	prices := []float64{10, 11, 12, 13, 14, 15}
	ema := EMA(prices, 3)

	if len(ema) != 4 {
		t.Fatalf("expected 4 values, got %d", len(ema))
	}

	// First EMA = SMA = 11
	if ema[0] != 11 {
		t.Errorf("first EMA should equal SMA, got %f", ema[0])
	}

	// Subsequent EMAs should trend upward
	for i := 1; i < len(ema); i++ {
		if ema[i] <= ema[i-1] {
			t.Errorf("EMA should be increasing, ema[%d]=%f <= ema[%d]=%f", i, ema[i], i-1, ema[i-1])
		}
	}
}

func TestEMA_NotEnoughData(t *testing.T) {
	for _, period := range []int{5, 0, -1} {
		if ema := EMA([]float64{32.1, 32.4}, period); len(ema) != 0 {
			t.Errorf("period %d: expected empty slice, got %d values", period, len(ema))
		}
	}
}

func TestAlign(t *testing.T) {
	closes := []float64{32.1, 32.4, 32.7, 33.0, 33.3}
	got := Align(SMA(closes, 3), len(closes))

	if len(got) != len(closes) {
		t.Fatalf("expected %d values, got %d", len(closes), len(got))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(got[i]) {
			t.Errorf("got[%d] = %f, want NaN", i, got[i])
		}
	}
	if !almostEqual(got[4], 33.0, 1e-9) {
		t.Errorf("last value should line up with the last close, got %f", got[4])
	}
}

func TestAlign_Truncates(t *testing.T) {
	got := Align([]float64{1, 2, 3, 4}, 2)
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("expected the newest two values, got %v", got)
	}
}

func TestLast(t *testing.T) {
	if v, ok := Last([]float64{math.NaN(), 51.2}); !ok || v != 51.2 {
		t.Errorf("Last = %f, %v", v, ok)
	}
	if _, ok := Last([]float64{51.2, math.NaN()}); ok {
		t.Error("a trailing NaN has no defined last value")
	}
	if _, ok := Last(nil); ok {
		t.Error("empty series has no last value")
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}
