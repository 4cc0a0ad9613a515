package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/session"
	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/logger"
)

type fakeInstrumentSource struct {
	instruments []models.Instrument
}

func (f *fakeInstrumentSource) ListInstruments(_ context.Context) ([]models.Instrument, error) {
	return f.instruments, nil
}

type fakeCandleSource struct {
	candles map[string][]models.Candle
	err     error
}

func (f *fakeCandleSource) GetCandles(_ context.Context, figi string, _ int, _ repository.Interval) ([]models.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.candles[figi]
	if !ok {
		return nil, fmt.Errorf("no candles: %w", models.ErrDataUnavailable)
	}
	return c, nil
}

type fakePredictor struct {
	label       int
	probability float64
	err         error
}

func (f *fakePredictor) Predict(_ models.FeatureVector) (int, float64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.label, f.probability, nil
}

type nopSubscriber struct{}

func (nopSubscriber) Subscribe(string) error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordOrderBookUpdate(string)    {}
func (nopMetrics) RecordStreamReconnect()          {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
func (nopMetrics) RecordTraining(float64)          {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func uptrendCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := 100.0 + float64(i)
		out[i] = models.Candle{
			OpenTime: base.Add(time.Duration(i) * 5 * time.Minute),
			Open:     decimal.NewFromFloat(price - 0.5),
			High:     decimal.NewFromFloat(price + 1),
			Low:      decimal.NewFromFloat(price - 1),
			Close:    decimal.NewFromFloat(price),
			Volume:   1000 + int64(i),
		}
	}
	return out
}

type apiFixture struct {
	echo    *echo.Echo
	candles *fakeCandleSource
}

func newAPIFixture(t *testing.T, limiter *ratelimit.Limiter) *apiFixture {
	t.Helper()

	source := &fakeInstrumentSource{instruments: []models.Instrument{
		{FIGI: "F1", Ticker: "SBER", Name: "Sber"},
		{FIGI: "F2", Ticker: "GAZP", Name: "Gazprom"},
	}}
	candles := &fakeCandleSource{candles: map[string][]models.Candle{
		"F1": uptrendCandles(40),
		"F2": uptrendCandles(40),
	}}
	profiles := map[string]config.StrategyProfile{
		"short_term": {
			Interval:             "5m",
			LookbackDays:         2,
			MinCandles:           30,
			EMALength:            9,
			RSILength:            14,
			ATRLength:            14,
			StopLossMultiplier:   1.5,
			TakeProfitMultiplier: 2.0,
		},
	}

	log := testLogger(t)
	dir := usecase.NewDirectory(source, candles, usecase.DirectoryConfig{}, log)
	analyzer := usecase.NewAnalyzer(dir, candles, &fakePredictor{label: 1, probability: 0.8},
		nopSubscriber{}, profiles, "short_term", log, nopMetrics{})

	root := NewRoot(
		NewAnalysisHandler(analyzer, dir, limiter, log),
		NewDialogueHandler(analyzer, session.NewStore(0), log),
	)

	e := echo.New()
	root.RegisterRoutes(e)
	return &apiFixture{echo: e, candles: candles}
}

func (f *apiFixture) get(t *testing.T, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestAnalyzeEndpoint(t *testing.T) {
	fix := newAPIFixture(t, nil)

	rec, body := fix.get(t, "/api/analyze?ticker=SBER")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing data: %v", body)
	}
	if data["ticker"] != "SBER" {
		t.Fatalf("ticker %v, want SBER", data["ticker"])
	}
	if data["decision"] != "buy" {
		t.Fatalf("decision %v, want buy", data["decision"])
	}
}

func TestAnalyzeEndpointUnknownTicker(t *testing.T) {
	fix := newAPIFixture(t, nil)

	rec, _ := fix.get(t, "/api/analyze?ticker=ZZZZ")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestAnalyzeEndpointMissingTicker(t *testing.T) {
	fix := newAPIFixture(t, nil)

	rec, _ := fix.get(t, "/api/analyze")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpointInsufficientData(t *testing.T) {
	fix := newAPIFixture(t, nil)
	fix.candles.candles["F1"] = uptrendCandles(3)

	rec, _ := fix.get(t, "/api/analyze?ticker=SBER")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rec.Code)
	}
}

func TestAnalyzeEndpointUpstreamDown(t *testing.T) {
	fix := newAPIFixture(t, nil)
	fix.candles.err = fmt.Errorf("down: %w", models.ErrDataUnavailable)

	rec, _ := fix.get(t, "/api/analyze?ticker=SBER")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status %d, want 502", rec.Code)
	}
}

func TestTopInstrumentsEndpoint(t *testing.T) {
	fix := newAPIFixture(t, nil)

	rec, body := fix.get(t, "/api/instruments/top?n=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
	}

	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing data: %v", body)
	}
	rows, ok := data["rows"].([]interface{})
	if !ok {
		t.Fatalf("missing rows: %v", data)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestTopInstrumentsEndpointValidation(t *testing.T) {
	fix := newAPIFixture(t, nil)

	rec, _ := fix.get(t, "/api/instruments/top?n=500")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	fix := newAPIFixture(t, nil)

	rec, _ := fix.get(t, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	fix := newAPIFixture(t, ratelimit.New(0.001, 1))

	rec, _ := fix.get(t, "/api/analyze?ticker=SBER")
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status %d, want 200", rec.Code)
	}
	rec, _ = fix.get(t, "/api/analyze?ticker=SBER")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status %d, want 429", rec.Code)
	}
}
