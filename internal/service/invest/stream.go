package invest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Dialer establishes streaming connections to the exchange market-data feed.
type Dialer struct {
	url   string
	token string
}

// NewDialer creates a stream dialer with bearer credentials.
func NewDialer(url, token string) *Dialer {
	return &Dialer{url: url, token: token}
}

// Dial opens a new WebSocket connection.
func (d *Dialer) Dial(ctx context.Context) (drepo.StreamConn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+d.token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, d.url, header)
	if err != nil {
		return nil, fmt.Errorf("stream dial: %w", err)
	}
	return &streamConn{conn: conn}, nil
}

// streamConn wraps one live WebSocket connection.
type streamConn struct {
	conn *websocket.Conn
}

func (s *streamConn) Subscribe(figi string, depth int) error {
	msg := subscribeMessage{Event: "orderbook:subscribe", FIGI: figi, Depth: depth}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %s: %w", figi, err)
	}
	return nil
}

// ReadSnapshot blocks until the next order-book frame and decodes it. Frames
// with other event types are skipped; malformed frames are a protocol error
// and terminate the connection.
func (s *streamConn) ReadSnapshot() (*models.OrderBookSnapshot, error) {
	for {
		_, b, err := s.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("stream read: %w", err)
		}

		var ev streamEvent
		if err := json.Unmarshal(b, &ev); err != nil {
			return nil, fmt.Errorf("stream decode: %w", err)
		}
		if ev.Event != "orderbook" {
			continue
		}

		snap := &models.OrderBookSnapshot{
			FIGI:       ev.Payload.FIGI,
			Bids:       decodeLevels(ev.Payload.Bids),
			Asks:       decodeLevels(ev.Payload.Asks),
			ObservedAt: time.Now().UTC(),
		}
		return snap, nil
	}
}

func (s *streamConn) Close() error {
	return s.conn.Close()
}

func decodeLevels(levels []wireLevel) []models.OrderBookLevel {
	out := make([]models.OrderBookLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, models.OrderBookLevel{
			Price:    l.Price.Decimal(),
			Quantity: l.Quantity,
		})
	}
	return out
}

var _ drepo.StreamDialer = (*Dialer)(nil)
