package model

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	"MarketPulse/internal/domain/service"
	"MarketPulse/internal/services/features"
	"MarketPulse/pkg/logger"
)

// Sampler selects the instruments used to build the training set.
type Sampler interface {
	Sample(ctx context.Context, n int) ([]models.Instrument, error)
}

// Config holds the training schedule and dataset shape.
type Config struct {
	RetrainInterval time.Duration
	TrainingDays    int
	Interval        repository.Interval
	SampleSize      int
	Params          features.Params
}

// Snapshot is one immutable trained model. Readers always see either the
// previous complete snapshot or the new one, never a half-trained state.
type Snapshot struct {
	Classifier service.Classifier
	TrainedAt  time.Time
	Accuracy   float64
	Samples    int
}

// Manager owns the classifier lifecycle: periodic retraining on fresh candles
// and lock-free prediction against the current snapshot. Before the first
// successful training run every prediction fails with models.ErrModelNotReady;
// a failed retrain keeps the previous snapshot serving.
type Manager struct {
	sampler       Sampler
	candles       repository.CandleSource
	newClassifier func() service.Classifier
	cfg           Config
	log           *logger.Logger
	metrics       repository.Metrics

	current atomic.Pointer[Snapshot]
}

// NewManager creates a manager with no trained snapshot.
func NewManager(
	sampler Sampler,
	candles repository.CandleSource,
	newClassifier func() service.Classifier,
	cfg Config,
	log *logger.Logger,
	metrics repository.Metrics,
) *Manager {
	return &Manager{
		sampler:       sampler,
		candles:       candles,
		newClassifier: newClassifier,
		cfg:           cfg,
		log:           log.With("model"),
		metrics:       metrics,
	}
}

// Snapshot returns the current trained snapshot, or nil before the first
// successful training run.
func (m *Manager) Snapshot() *Snapshot {
	return m.current.Load()
}

// Predict classifies one feature vector against the current snapshot.
func (m *Manager) Predict(fv models.FeatureVector) (int, float64, error) {
	snap := m.current.Load()
	if snap == nil {
		return 0, 0, models.ErrModelNotReady
	}
	return snap.Classifier.Predict(fv.Slice())
}

// Run trains immediately, then retrains on every tick until the context is
// cancelled. Training failures are contained: they are logged and the
// previous snapshot keeps serving.
func (m *Manager) Run(ctx context.Context) {
	if err := m.TrainNow(ctx); err != nil {
		m.log.Error("initial training failed", logger.Error(err))
	}

	ticker := time.NewTicker(m.cfg.RetrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.TrainNow(ctx); err != nil {
				m.log.Error("retraining failed", logger.Error(err))
			}
		}
	}
}

// TrainNow builds a fresh training set, fits a new classifier, and swaps it
// in atomically. On any failure the current snapshot is left untouched.
func (m *Manager) TrainNow(ctx context.Context) error {
	started := time.Now()

	instruments, err := m.sampler.Sample(ctx, m.cfg.SampleSize)
	if err != nil {
		m.metrics.RecordError("training")
		return fmt.Errorf("sample training instruments: %w", err)
	}
	if len(instruments) == 0 {
		m.metrics.RecordError("training")
		return fmt.Errorf("no instruments available for training")
	}

	var (
		rows   [][]float64
		labels []int
	)
	for _, inst := range instruments {
		candles, err := m.candles.GetCandles(ctx, inst.FIGI, m.cfg.TrainingDays, m.cfg.Interval)
		if err != nil {
			m.log.Warn("skipping instrument in training set",
				logger.String("ticker", inst.Ticker), logger.Error(err))
			continue
		}
		r, l, err := buildDataset(candles, m.cfg.Params)
		if err != nil {
			m.log.Warn("skipping instrument in training set",
				logger.String("ticker", inst.Ticker), logger.Error(err))
			continue
		}
		rows = append(rows, r...)
		labels = append(labels, l...)
	}

	if len(rows) == 0 {
		m.metrics.RecordError("training")
		return fmt.Errorf("training set is empty: %w", models.ErrInsufficientData)
	}

	clf := m.newClassifier()
	if err := clf.Fit(rows, labels); err != nil {
		m.metrics.RecordError("training")
		return fmt.Errorf("fit classifier: %w", err)
	}

	accuracy := trainingAccuracy(clf, rows, labels)
	snap := &Snapshot{
		Classifier: clf,
		TrainedAt:  time.Now(),
		Accuracy:   accuracy,
		Samples:    len(rows),
	}
	m.current.Store(snap)

	m.metrics.RecordTraining(accuracy)
	m.metrics.RecordLatency("training", time.Since(started).Seconds())
	m.log.Info("model retrained",
		logger.Int("samples", len(rows)),
		logger.Int("instruments", len(instruments)),
		logger.Float64("accuracy", accuracy),
		logger.Duration("took", time.Since(started)))
	return nil
}

func trainingAccuracy(clf service.Classifier, rows [][]float64, labels []int) float64 {
	correct := 0
	for i, row := range rows {
		label, _, err := clf.Predict(row)
		if err != nil {
			continue
		}
		if label == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}
