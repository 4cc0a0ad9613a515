package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instrument is a tradable instrument known to the exchange directory.
// Immutable once loaded; the directory refreshes the whole universe periodically.
type Instrument struct {
	FIGI   string `json:"figi"`
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Class  string `json:"class"`
}

// Candle is an OHLCV aggregate over a fixed time bucket. Prices are decimal,
// never raw floats. Sequences are time-ascending with unique OpenTime per
// instrument and interval.
type Candle struct {
	OpenTime time.Time       `json:"open_time"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   int64           `json:"volume"`
}

// OrderBookLevel is one rung of the bid/ask ladder.
type OrderBookLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// OrderBookSnapshot is the full ranked book for an instrument at a point in
// time. Snapshots replace each other wholesale; there is no incremental diffing.
type OrderBookSnapshot struct {
	FIGI       string           `json:"figi"`
	Bids       []OrderBookLevel `json:"bids"`
	Asks       []OrderBookLevel `json:"asks"`
	ObservedAt time.Time        `json:"observed_at"`
}

// BestBid returns the top-of-book bid price, or zero if the book is empty.
func (s *OrderBookSnapshot) BestBid() decimal.Decimal {
	if len(s.Bids) == 0 {
		return decimal.Zero
	}
	return s.Bids[0].Price
}

// BestAsk returns the top-of-book ask price, or zero if the book is empty.
func (s *OrderBookSnapshot) BestAsk() decimal.Decimal {
	if len(s.Asks) == 0 {
		return decimal.Zero
	}
	return s.Asks[0].Price
}
