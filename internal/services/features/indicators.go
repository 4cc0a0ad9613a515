// Package features computes technical indicators over candle series.
//
// All computations are deterministic pure functions of their input; candles
// must already be time-ascending. Every indicator of length n requires at
// least n+1 candles.
package features

import (
	"fmt"
	"math"

	"MarketPulse/internal/domain/models"
)

// Params holds the indicator lengths for one computation.
type Params struct {
	EMALength int
	RSILength int
	ATRLength int
}

// MinCandles returns the minimum series length the params require.
func (p Params) MinCandles() int {
	n := p.EMALength
	if p.RSILength > n {
		n = p.RSILength
	}
	if p.ATRLength > n {
		n = p.ATRLength
	}
	return n + 1
}

// ComputeIndicators computes the latest EMA, RSI, and ATR values plus the last
// volume as a feature vector.
func ComputeIndicators(candles []models.Candle, p Params) (models.FeatureVector, error) {
	if len(candles) < p.MinCandles() {
		return models.FeatureVector{}, fmt.Errorf("%w: have %d candles, need %d",
			models.ErrInsufficientData, len(candles), p.MinCandles())
	}

	ema, err := EMA(candles, p.EMALength)
	if err != nil {
		return models.FeatureVector{}, err
	}
	rsi, err := RSI(candles, p.RSILength)
	if err != nil {
		return models.FeatureVector{}, err
	}
	atr, err := ATR(candles, p.ATRLength)
	if err != nil {
		return models.FeatureVector{}, err
	}

	return models.FeatureVector{
		EMA:    ema,
		RSI:    rsi,
		ATR:    atr,
		Volume: float64(candles[len(candles)-1].Volume),
	}, nil
}

// EMA returns the latest exponential moving average of the closes, seeded by
// the simple average of the first length closes.
func EMA(candles []models.Candle, length int) (float64, error) {
	series, err := EMASeries(candles, length)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// EMASeries returns the EMA value aligned to every candle from index length-1
// onward. The recurrence is ema[t] = close[t]*k + ema[t-1]*(1-k), k = 2/(length+1).
func EMASeries(candles []models.Candle, length int) ([]float64, error) {
	if err := checkLength(candles, length); err != nil {
		return nil, err
	}

	closes := closesOf(candles)

	var sum float64
	for i := 0; i < length; i++ {
		sum += closes[i]
	}
	ema := sum / float64(length)
	k := 2.0 / float64(length+1)

	out := make([]float64, 0, len(closes)-length+1)
	out = append(out, ema)
	for i := length; i < len(closes); i++ {
		ema = closes[i]*k + ema*(1-k)
		out = append(out, ema)
	}
	return out, nil
}

// RSI returns the latest Wilder relative strength index of the closes.
// A series with no losses yields 100.
func RSI(candles []models.Candle, length int) (float64, error) {
	series, err := RSISeries(candles, length)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// RSISeries returns the RSI aligned to every candle from index length onward,
// using Wilder's smoothed average gain and loss.
func RSISeries(candles []models.Candle, length int) ([]float64, error) {
	if err := checkLength(candles, length); err != nil {
		return nil, err
	}

	closes := closesOf(candles)

	var gains, losses float64
	for i := 1; i <= length; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(length)
	avgLoss := losses / float64(length)

	out := make([]float64, 0, len(closes)-length)
	out = append(out, rsiOf(avgGain, avgLoss))

	for i := length + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(length-1) + gain) / float64(length)
		avgLoss = (avgLoss*float64(length-1) + loss) / float64(length)
		out = append(out, rsiOf(avgGain, avgLoss))
	}
	return out, nil
}

// ATR returns the latest Wilder-smoothed average true range.
func ATR(candles []models.Candle, length int) (float64, error) {
	series, err := ATRSeries(candles, length)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// ATRSeries returns the ATR aligned to every candle from index length onward.
// True range is max(high-low, |high-prevClose|, |low-prevClose|).
func ATRSeries(candles []models.Candle, length int) ([]float64, error) {
	if err := checkLength(candles, length); err != nil {
		return nil, err
	}

	trs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		high, _ := candles[i].High.Float64()
		low, _ := candles[i].Low.Float64()
		prevClose, _ := candles[i-1].Close.Float64()

		tr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
		trs = append(trs, tr)
	}

	var sum float64
	for i := 0; i < length; i++ {
		sum += trs[i]
	}
	atr := sum / float64(length)

	out := make([]float64, 0, len(trs)-length+1)
	out = append(out, atr)
	for i := length; i < len(trs); i++ {
		atr = (atr*float64(length-1) + trs[i]) / float64(length)
		out = append(out, atr)
	}
	return out, nil
}

func rsiOf(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

func closesOf(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		v, _ := c.Close.Float64()
		out[i] = v
	}
	return out
}

func checkLength(candles []models.Candle, length int) error {
	if length <= 0 {
		return fmt.Errorf("indicator length must be positive, got %d", length)
	}
	if len(candles) < length+1 {
		return fmt.Errorf("%w: have %d candles, need %d", models.ErrInsufficientData, len(candles), length+1)
	}
	return nil
}
