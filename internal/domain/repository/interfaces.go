package repository

import (
	"context"

	"MarketPulse/internal/domain/models"
)

// StreamConn is a single live streaming connection to the exchange.
type StreamConn interface {
	// Subscribe sends one order-book subscription message. Idempotent on the
	// exchange side; re-sent for every tracked instrument after a reconnect.
	Subscribe(figi string, depth int) error
	// ReadSnapshot blocks until the next order-book frame arrives and decodes
	// it. Any error terminates the connection.
	ReadSnapshot() (*models.OrderBookSnapshot, error)
	Close() error
}

// StreamDialer establishes streaming connections. The ingestor redials through
// it forever; tests substitute a fake transport.
type StreamDialer interface {
	Dial(ctx context.Context) (StreamConn, error)
}

// CandleSource fetches a time-ascending candle series covering up to
// lookbackDays ending at now. Fails with models.ErrDataUnavailable when the
// upstream source cannot serve the range.
type CandleSource interface {
	GetCandles(ctx context.Context, figi string, lookbackDays int, interval Interval) ([]models.Candle, error)
}

// InstrumentSource lists the tradable universe.
type InstrumentSource interface {
	ListInstruments(ctx context.Context) ([]models.Instrument, error)
}

// OrderBookSink receives decoded order-book snapshots from the stream.
type OrderBookSink interface {
	SetOrderBook(snapshot *models.OrderBookSnapshot)
}

// Metrics records operational metrics for the core.
type Metrics interface {
	RecordOrderBookUpdate(figi string)
	RecordStreamReconnect()
	RecordError(kind string)
	RecordLastPrice(ticker string, price float64)
	RecordLatency(op string, seconds float64)
	RecordTraining(accuracy float64)
}
