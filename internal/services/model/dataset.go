package model

import (
	"fmt"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/services/features"
)

// buildDataset turns one candle series into aligned feature rows and labels.
// Row i carries the indicator values as of candle i and a label of 1 when the
// next close exceeds the current close, 0 otherwise. The last candle has no
// next close and produces no row.
func buildDataset(candles []models.Candle, p features.Params) ([][]float64, []int, error) {
	emaS, err := features.EMASeries(candles, p.EMALength)
	if err != nil {
		return nil, nil, err
	}
	rsiS, err := features.RSISeries(candles, p.RSILength)
	if err != nil {
		return nil, nil, err
	}
	atrS, err := features.ATRSeries(candles, p.ATRLength)
	if err != nil {
		return nil, nil, err
	}

	// First candle index where every indicator is defined.
	start := p.EMALength - 1
	if p.RSILength > start {
		start = p.RSILength
	}
	if p.ATRLength > start {
		start = p.ATRLength
	}

	if len(candles)-1 <= start {
		return nil, nil, fmt.Errorf("%w: have %d candles, need %d for training",
			models.ErrInsufficientData, len(candles), start+2)
	}

	rows := make([][]float64, 0, len(candles)-1-start)
	labels := make([]int, 0, len(candles)-1-start)

	for i := start; i < len(candles)-1; i++ {
		fv := models.FeatureVector{
			EMA:    emaS[i-(p.EMALength-1)],
			RSI:    rsiS[i-p.RSILength],
			ATR:    atrS[i-p.ATRLength],
			Volume: float64(candles[i].Volume),
		}
		rows = append(rows, fv.Slice())

		label := 0
		if candles[i+1].Close.GreaterThan(candles[i].Close) {
			label = 1
		}
		labels = append(labels, label)
	}
	return rows, labels, nil
}
