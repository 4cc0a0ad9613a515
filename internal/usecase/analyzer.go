package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	"MarketPulse/internal/services/features"
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/logger"
)

// Predictor classifies a feature vector into a direction label with the
// probability of an upward move.
type Predictor interface {
	Predict(fv models.FeatureVector) (label int, probability float64, err error)
}

// Subscriber tracks instruments on the live stream.
type Subscriber interface {
	Subscribe(figi string) error
}

// Analyzer runs the full analysis flow for one ticker: resolve, fetch
// candles, compute indicators, classify, and derive risk levels from the
// strategy profile. Analyzed instruments are auto-subscribed on the stream so
// later requests see live order books.
type Analyzer struct {
	directory   *Directory
	candles     repository.CandleSource
	predictor   Predictor
	subscriber  Subscriber
	profiles    map[string]config.StrategyProfile
	defaultMode string
	log         *logger.Logger
	metrics     repository.Metrics
}

// NewAnalyzer wires the analysis flow.
func NewAnalyzer(
	directory *Directory,
	candles repository.CandleSource,
	predictor Predictor,
	subscriber Subscriber,
	profiles map[string]config.StrategyProfile,
	defaultMode string,
	log *logger.Logger,
	metrics repository.Metrics,
) *Analyzer {
	return &Analyzer{
		directory:   directory,
		candles:     candles,
		predictor:   predictor,
		subscriber:  subscriber,
		profiles:    profiles,
		defaultMode: defaultMode,
		log:         log.With("analyzer"),
		metrics:     metrics,
	}
}

// Analyze produces a trading decision for one ticker under the given mode.
// An empty mode selects the default profile. Typed failures: unknown ticker
// or mode yields models.ErrNotFound, a short candle series yields
// models.ErrInsufficientData, upstream data failures yield
// models.ErrDataUnavailable. An untrained model is contained as a hold
// decision with zero confidence.
func (a *Analyzer) Analyze(ctx context.Context, ticker, mode string) (*models.AnalysisResult, error) {
	started := time.Now()

	if mode == "" {
		mode = a.defaultMode
	}
	profile, ok := a.profiles[mode]
	if !ok {
		return nil, fmt.Errorf("analysis mode %q: %w", mode, models.ErrNotFound)
	}

	inst, err := a.directory.ResolveTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}

	candles, err := a.candles.GetCandles(ctx, inst.FIGI, profile.LookbackDays, repository.NormalizeInterval(profile.Interval))
	if err != nil {
		return nil, fmt.Errorf("candles for %s: %w", inst.Ticker, err)
	}
	if len(candles) < profile.MinCandles {
		return nil, fmt.Errorf("%w: have %d candles for %s, need %d",
			models.ErrInsufficientData, len(candles), inst.Ticker, profile.MinCandles)
	}

	fv, err := features.ComputeIndicators(candles, features.Params{
		EMALength: profile.EMALength,
		RSILength: profile.RSILength,
		ATRLength: profile.ATRLength,
	})
	if err != nil {
		return nil, err
	}

	decision, confidence := a.classify(fv, inst.Ticker)

	price := candles[len(candles)-1].Close
	result := &models.AnalysisResult{
		Ticker:     inst.Ticker,
		Decision:   decision,
		Confidence: confidence,
		Price:      price,
		StopLoss:   price.Sub(decimal.NewFromFloat(fv.ATR * profile.StopLossMultiplier)),
		TakeProfit: price.Add(decimal.NewFromFloat(fv.ATR * profile.TakeProfitMultiplier)),
		Timestamp:  time.Now(),
	}

	if err := a.subscriber.Subscribe(inst.FIGI); err != nil {
		a.log.Warn("auto-subscribe failed", logger.String("ticker", inst.Ticker), logger.Error(err))
	}

	priceF, _ := price.Float64()
	a.metrics.RecordLastPrice(inst.Ticker, priceF)
	a.metrics.RecordLatency("analyze", time.Since(started).Seconds())
	a.log.Info("analysis complete",
		logger.String("ticker", inst.Ticker),
		logger.String("mode", mode),
		logger.String("decision", string(decision)),
		logger.Float64("confidence", confidence))
	return result, nil
}

func (a *Analyzer) classify(fv models.FeatureVector, ticker string) (models.Decision, float64) {
	label, probability, err := a.predictor.Predict(fv)
	if err != nil {
		if errors.Is(err, models.ErrModelNotReady) {
			a.log.Debug("model not trained yet, holding", logger.String("ticker", ticker))
		} else {
			a.metrics.RecordError("predict")
			a.log.Error("prediction failed", logger.String("ticker", ticker), logger.Error(err))
		}
		return models.DecisionHold, 0
	}

	// Confidence is always the probability of the up class.
	if label == 1 {
		return models.DecisionBuy, probability * 100
	}
	return models.DecisionSell, probability * 100
}
