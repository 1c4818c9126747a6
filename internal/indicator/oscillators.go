package indicator

import "math"

// The functions below return series aligned with their input: one value per
// price, NaN until the look-back window is filled.

// RSI calculates the Relative Strength Index with Wilder smoothing.
func RSI(closes []float64, period int) []float64 {
	out := nans(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	p := float64(period)
	var gain, loss float64
	for i := 1; i <= period; i++ {
		g, l := move(closes[i-1], closes[i])
		gain += g
		loss += l
	}
	gain /= p
	loss /= p
	out[period] = rsi(gain, loss)

	for i := period + 1; i < len(closes); i++ {
		g, l := move(closes[i-1], closes[i])
		gain = (gain*(p-1) + g) / p
		loss = (loss*(p-1) + l) / p
		out[i] = rsi(gain, loss)
	}
	return out
}

func move(prev, cur float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

func rsi(gain, loss float64) float64 {
	if loss == 0 {
		if gain == 0 {
			return 50
		}
		return 100
	}
	return 100 - 100/(1+gain/loss)
}

// MACD calculates the MACD line, its signal line and the histogram.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	n := len(closes)
	line, sig, hist = nans(n), nans(n), nans(n)
	if fast <= 0 || slow <= fast || n < slow {
		return line, sig, hist
	}

	fastEMA := Align(EMA(closes, fast), n)
	slowEMA := Align(EMA(closes, slow), n)
	for i := slow - 1; i < n; i++ {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	sig = Align(EMA(line[slow-1:], signal), n)
	for i := range hist {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// Bollinger calculates bands k population standard deviations around the
// simple moving average.
func Bollinger(closes []float64, period int, k float64) (upper, middle, lower []float64) {
	n := len(closes)
	upper, lower = nans(n), nans(n)
	middle = Align(SMA(closes, period), n)
	if period <= 0 || n < period {
		return upper, middle, lower
	}

	for i := period - 1; i < n; i++ {
		mean := middle[i]
		var ss float64
		for _, v := range closes[i-period+1 : i+1] {
			ss += (v - mean) * (v - mean)
		}
		sd := math.Sqrt(ss / float64(period))
		upper[i] = mean + k*sd
		lower[i] = mean - k*sd
	}
	return upper, middle, lower
}

// Stochastic calculates %K over kPeriod and %D as its dPeriod average.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d []float64) {
	n := len(closes)
	k, d = nans(n), nans(n)
	if kPeriod <= 0 || n < kPeriod || len(highs) != n || len(lows) != n {
		return k, d
	}

	for i := kPeriod - 1; i < n; i++ {
		hh, ll := highs[i], lows[i]
		for j := i - kPeriod + 1; j < i; j++ {
			hh = math.Max(hh, highs[j])
			ll = math.Min(ll, lows[j])
		}
		if hh == ll {
			k[i] = 50
			continue
		}
		k[i] = 100 * (closes[i] - ll) / (hh - ll)
	}

	d = Align(SMA(k[kPeriod-1:], dPeriod), n)
	return k, d
}
