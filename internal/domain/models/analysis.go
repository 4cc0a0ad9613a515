package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Decision is the outcome of an analysis request.
type Decision string

const (
	DecisionBuy  Decision = "buy"
	DecisionSell Decision = "sell"
	DecisionHold Decision = "hold"
)

// FeatureVector holds the technical features consumed by the classifier.
// The field order of Slice is the canonical feature order for training and
// prediction and must never change between the two.
type FeatureVector struct {
	EMA    float64 `json:"ema"`
	RSI    float64 `json:"rsi"`
	ATR    float64 `json:"atr"`
	Volume float64 `json:"volume"`
}

// Slice returns the vector in canonical feature order: ema, rsi, atr, volume.
func (f FeatureVector) Slice() []float64 {
	return []float64{f.EMA, f.RSI, f.ATR, f.Volume}
}

// FeatureNames lists the canonical feature order.
func FeatureNames() []string { return []string{"ema", "rsi", "atr", "volume"} }

// AnalysisResult is the assembled answer to an analyze request. Risk levels
// are derived from ATR and the strategy profile's multipliers.
type AnalysisResult struct {
	Ticker     string          `json:"ticker"`
	Decision   Decision        `json:"decision"`
	Confidence float64         `json:"confidence_percent"`
	Price      decimal.Decimal `json:"price"`
	StopLoss   decimal.Decimal `json:"stop_loss"`
	TakeProfit decimal.Decimal `json:"take_profit"`
	Timestamp  time.Time       `json:"timestamp"`
}

// TopInstrument is one entry of the top-by-volume listing.
type TopInstrument struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Volume int64  `json:"volume"`
}
