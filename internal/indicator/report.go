package indicator

import (
	"fmt"
	"math"

	"github.com/newthinker/tasi/internal/core"
)

// Standard look-back windows.
const (
	RSIPeriod       = 14
	BollingerPeriod = 20
	BollingerWidth  = 2.0
	StochK          = 14
	StochD          = 3
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9
)

// minSignalPoints is the shortest history signals are derived from.
const minSignalPoints = 20

var (
	smaPeriods = []int{5, 10, 20, 50, 200}
	emaPeriods = []int{12, 26, 50}
)

// Prices splits a price history into closes, highs and lows.
func Prices(points []core.PricePoint) (closes, highs, lows []float64) {
	closes = make([]float64, len(points))
	highs = make([]float64, len(points))
	lows = make([]float64, len(points))
	for i, p := range points {
		closes[i], highs[i], lows[i] = p.Close, p.High, p.Low
	}
	return closes, highs, lows
}

// Compute calculates every indicator the history is long enough for, keyed
// by the names the stock backend uses.
func Compute(points []core.PricePoint) core.IndicatorSeries {
	closes, highs, lows := Prices(points)
	n := len(closes)
	out := core.IndicatorSeries{}

	for _, p := range smaPeriods {
		if n >= p {
			out[fmt.Sprintf("SMA_%d", p)] = Align(SMA(closes, p), n)
		}
	}
	for _, p := range emaPeriods {
		if n >= p {
			out[fmt.Sprintf("EMA_%d", p)] = Align(EMA(closes, p), n)
		}
	}
	if n >= MACDSlow {
		out["MACD"], out["MACD_Signal"], out["MACD_Histogram"] = MACD(closes, MACDFast, MACDSlow, MACDSignal)
	}
	if n > RSIPeriod {
		out[fmt.Sprintf("RSI_%d", RSIPeriod)] = RSI(closes, RSIPeriod)
	}
	if n >= BollingerPeriod {
		out["BB_Upper"], out["BB_Middle"], out["BB_Lower"] = Bollinger(closes, BollingerPeriod, BollingerWidth)
	}
	if n >= StochK {
		out["Stoch_K"], out["Stoch_D"] = Stochastic(highs, lows, closes, StochK, StochD)
	}
	return out
}

// Signals reads the latest RSI zone, MACD crossover, moving average trend and
// Bollinger position from the history. Histories shorter than 20 points yield no signals.
func Signals(points []core.PricePoint) map[string]any {
	signals := map[string]any{}
	if len(points) < minSignalPoints {
		return signals
	}
	closes, _, _ := Prices(points)
	n := len(closes)

	if v, ok := Last(RSI(closes, RSIPeriod)); ok {
		switch {
		case v > 70:
			signals["RSI_Signal"] = core.SignalOverbought
		case v < 30:
			signals["RSI_Signal"] = core.SignalOversold
		default:
			signals["RSI_Signal"] = core.SignalNeutral
		}
		signals["RSI_Value"] = v
	}

	line, sig, _ := MACD(closes, MACDFast, MACDSlow, MACDSignal)
	if n > 1 && defined(line[n-1], sig[n-1], line[n-2], sig[n-2]) {
		cur, curSig, prev, prevSig := line[n-1], sig[n-1], line[n-2], sig[n-2]
		switch {
		case prev <= prevSig && cur > curSig:
			signals["MACD_Signal"] = core.SignalCrossBuy
		case prev >= prevSig && cur < curSig:
			signals["MACD_Signal"] = core.SignalCrossSell
		default:
			signals["MACD_Signal"] = core.SignalNeutral
		}
	}

	if n >= 50 {
		sma20, _ := Last(SMA(closes, 20))
		sma50, _ := Last(SMA(closes, 50))
		price := closes[n-1]
		switch {
		case price > sma20 && sma20 > sma50:
			signals["MA_Signal"] = core.SignalTrendUp
		case price < sma20 && sma20 < sma50:
			signals["MA_Signal"] = core.SignalTrendDown
		default:
			signals["MA_Signal"] = core.SignalNeutral
		}
	}
	upper, _, lower := Bollinger(closes, BollingerPeriod, BollingerWidth)
	if hi, ok := Last(upper); ok {
		lo, _ := Last(lower)
		price := closes[n-1]
		switch {
		case price >= hi:
			signals["BB_Signal"] = core.SignalOverbought
		case price <= lo:
			signals["BB_Signal"] = core.SignalOversold
		default:
			signals["BB_Signal"] = core.SignalNeutral
		}
	}
	return signals
}

func defined(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}
