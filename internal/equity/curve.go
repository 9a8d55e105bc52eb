package equity

import (
	"math"
	"sort"
	"time"

	"wallet-behavior-lab/internal/domain"
)

// Trailing window length, in daily returns, for the volatility estimate.
const volatilityWindowDays = 30

// CurveStats computes risk statistics over the wallet's daily equity curve.
// The series is first collapsed to one point per UTC day (the day's last
// value wins). Returns nil when no usable points exist.
func CurveStats(points []*domain.EquityPoint) *domain.CurveStats {
	daily := collapseDaily(Normalize(points))
	if len(daily) == 0 {
		return nil
	}

	cs := &domain.CurveStats{}

	first := daily[0]
	if first != 0 {
		maxV, minV := daily[0], daily[0]
		for _, v := range daily {
			if v > maxV {
				maxV = v
			}
			if v < minV {
				minV = v
			}
		}
		cs.PnlMaxPct = (maxV - first) / first * 100
		cs.PnlMinPct = (minV - first) / first * 100
	}

	cs.MaxDrawdownPct, cs.RecoveryDaysFromLastDD = drawdown(daily)

	returns := dailyReturns(daily)
	cs.Volatility30dPct = trailingVolatility(returns)
	cs.MaxUpDays, cs.MaxDownDays = streaks(returns)

	return cs
}

// collapseDaily reduces an ascending series to one value per UTC day.
// Within a day the last value wins.
func collapseDaily(points []domain.NormalizedPoint) []float64 {
	if len(points) == 0 {
		return nil
	}

	byDay := make(map[string]float64)
	days := make([]string, 0)
	for _, p := range points {
		day := time.UnixMilli(p.TimestampMs).UTC().Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			days = append(days, day)
		}
		byDay[day] = p.Value
	}
	sort.Strings(days)

	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = byDay[d]
	}
	return values
}

// drawdown tracks the running peak and returns the most negative
// peak-to-trough decline in percent, plus the number of daily steps from
// that trough to the first later value reaching the pre-trough peak (nil
// when the curve never recovers).
func drawdown(values []float64) (maxDDPct float64, recovery *int) {
	peak := values[0]
	troughIdx := -1
	troughPeak := 0.0
	maxDD := 0.0

	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := (v - peak) / peak
		if dd < maxDD {
			maxDD = dd
			troughIdx = i
			troughPeak = peak
		}
	}

	if troughIdx >= 0 {
		for j := troughIdx + 1; j < len(values); j++ {
			if values[j] >= troughPeak {
				days := j - troughIdx
				recovery = &days
				break
			}
		}
	}

	return maxDD * 100, recovery
}

// dailyReturns computes the day-over-day fractional returns. A day starting
// from a zero value yields a zero return rather than a blow-up.
func dailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	return returns
}

// trailingVolatility annualizes the sample stddev (n-1 denominator) of the
// last volatilityWindowDays returns. Returns 0 when fewer than two returns
// exist.
func trailingVolatility(returns []float64) float64 {
	if len(returns) > volatilityWindowDays {
		returns = returns[len(returns)-volatilityWindowDays:]
	}
	n := len(returns)
	if n < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(n)

	sumSq := 0.0
	for _, r := range returns {
		diff := r - mean
		sumSq += diff * diff
	}
	sd := math.Sqrt(sumSq / float64(n-1))

	return sd * math.Sqrt(365) * 100
}

// streaks returns the longest runs of strictly positive and strictly
// negative daily returns. A zero return resets both counters.
func streaks(returns []float64) (maxUp, maxDown int) {
	up, down := 0, 0
	for _, r := range returns {
		switch {
		case r > 0:
			up++
			down = 0
			if up > maxUp {
				maxUp = up
			}
		case r < 0:
			down++
			up = 0
			if down > maxDown {
				maxDown = down
			}
		default:
			up, down = 0, 0
		}
	}
	return maxUp, maxDown
}
