package strategy

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"futuresBot/internal/domain"
	"futuresBot/internal/ports"
)

// IndicatorParams are the look-back settings for ComputeIndicators.
type IndicatorParams struct {
	SMAFastPeriod   int
	SMASlowPeriod   int
	RSIPeriod       int
	BBLength        int
	BBStdDev        float64
	VolumeAvgWindow int
}

// RequiredDataPoints is the shortest series for which every indicator has a
// value on the last candle. RSI needs one extra candle for its first change.
func (p IndicatorParams) RequiredDataPoints() int {
	n := p.SMASlowPeriod
	for _, v := range []int{p.SMAFastPeriod, p.BBLength, p.VolumeAvgWindow, p.RSIPeriod + 1} {
		if v > n {
			n = v
		}
	}
	return n
}

// ComputeIndicators evaluates every indicator on klines (oldest first) and
// returns the values at the last candle.
func ComputeIndicators(klines []*domain.Kline, p IndicatorParams) (domain.IndicatorSnapshot, error) {
	required := p.RequiredDataPoints()
	if len(klines) < required {
		return domain.IndicatorSnapshot{}, fmt.Errorf("%w: have %d candles, need %d", ports.ErrIndicatorUnavailable, len(klines), required)
	}

	closes := domain.Closes(klines)
	volumes := domain.Volumes(klines)

	upper, middle, lower := talib.BBands(closes, p.BBLength, p.BBStdDev, p.BBStdDev, talib.SMA)

	snap := domain.IndicatorSnapshot{
		SMAFast:    last(talib.Sma(closes, p.SMAFastPeriod)),
		SMASlow:    last(talib.Sma(closes, p.SMASlowPeriod)),
		RSI:        last(talib.Rsi(closes, p.RSIPeriod)),
		BBUpper:    last(upper),
		BBMiddle:   last(middle),
		BBLower:    last(lower),
		VolumeAvg:  last(talib.Sma(volumes, p.VolumeAvgWindow)),
		LastClose:  closes[len(closes)-1],
		LastVolume: volumes[len(volumes)-1],
	}

	for name, v := range map[string]float64{
		"sma_fast": snap.SMAFast, "sma_slow": snap.SMASlow, "rsi": snap.RSI,
		"bb_upper": snap.BBUpper, "bb_lower": snap.BBLower, "volume_avg": snap.VolumeAvg,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.IndicatorSnapshot{}, fmt.Errorf("%w: %s is not a finite number", ports.ErrIndicatorUnavailable, name)
		}
	}
	return snap, nil
}

func last(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}
