package usecase

import (
	"context"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	"MarketPulse/internal/domain/service"
	"MarketPulse/internal/services/features"
	"MarketPulse/internal/services/model"
)

// End-to-end flow over trending data with the real classifier: a model
// trained on consistently rising closes must never advise selling into the
// same trend, and the RSI it sees is above 50.
func TestUptrendNeverSells(t *testing.T) {
	source := &fakeInstrumentSource{instruments: []models.Instrument{
		{FIGI: "F1", Ticker: "SBER", Name: "Sber"},
	}}
	candles := &fakeCandleSource{candles: map[string][]models.Candle{
		"F1": candleUptrend(80),
	}}

	dir := NewDirectory(source, candles, DirectoryConfig{}, testLogger(t))

	manager := model.NewManager(dir, candles,
		func() service.Classifier { return model.NewLogistic() },
		model.Config{
			RetrainInterval: time.Hour,
			TrainingDays:    30,
			Interval:        repository.IntervalHour,
			SampleSize:      5,
			Params:          features.Params{EMALength: 9, RSILength: 14, ATRLength: 14},
		}, testLogger(t), nopMetrics{})

	if err := manager.TrainNow(context.Background()); err != nil {
		t.Fatalf("train: %v", err)
	}

	analyzer := NewAnalyzer(dir, candles, manager, &fakeSubscriber{},
		testProfiles(), "short_term", testLogger(t), nopMetrics{})

	result, err := analyzer.Analyze(context.Background(), "SBER", "short_term")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if result.Decision == models.DecisionSell {
		t.Fatalf("model trained on an uptrend advised selling into it: %+v", result)
	}

	rsi, err := features.RSI(candles.candles["F1"], 14)
	if err != nil {
		t.Fatalf("rsi: %v", err)
	}
	if rsi <= 50 {
		t.Fatalf("rsi %.2f, want above 50 on an uptrend", rsi)
	}
}
