package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
)

// IngestorConfig bounds the subscription set and paces reconnects.
type IngestorConfig struct {
	Depth            int
	MaxSubscriptions int
	ReconnectTimeout time.Duration
}

// StreamIngestor maintains one live order-book stream. It tracks a bounded
// set of subscribed instruments, pushes every decoded snapshot into the sink,
// and survives any connection failure by redialing after a fixed delay and
// replaying all subscriptions on the fresh connection.
type StreamIngestor struct {
	dialer  repository.StreamDialer
	sink    repository.OrderBookSink
	cfg     IngestorConfig
	log     *logger.Logger
	metrics repository.Metrics

	mu     sync.Mutex
	figis  map[string]struct{}
	conn   repository.StreamConn
}

// NewStreamIngestor creates an ingestor with an empty subscription set.
func NewStreamIngestor(
	dialer repository.StreamDialer,
	sink repository.OrderBookSink,
	cfg IngestorConfig,
	log *logger.Logger,
	metrics repository.Metrics,
) *StreamIngestor {
	if cfg.Depth <= 0 {
		cfg.Depth = 10
	}
	if cfg.MaxSubscriptions <= 0 {
		cfg.MaxSubscriptions = 50
	}
	if cfg.ReconnectTimeout <= 0 {
		cfg.ReconnectTimeout = 5 * time.Second
	}
	return &StreamIngestor{
		dialer:  dialer,
		sink:    sink,
		cfg:     cfg,
		log:     log.With("ingestor"),
		metrics: metrics,
		figis:   map[string]struct{}{},
	}
}

// Subscribe adds an instrument to the tracked set and, when a connection is
// live, sends the subscription immediately. Re-subscribing an already tracked
// instrument is a no-op. Fails when the subscription set is full.
func (s *StreamIngestor) Subscribe(figi string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.figis[figi]; ok {
		return nil
	}
	if len(s.figis) >= s.cfg.MaxSubscriptions {
		return fmt.Errorf("subscription limit of %d reached", s.cfg.MaxSubscriptions)
	}
	s.figis[figi] = struct{}{}

	if s.conn != nil {
		if err := s.conn.Subscribe(figi, s.cfg.Depth); err != nil {
			// The read loop will notice the broken connection and redial;
			// the instrument stays tracked and gets resubscribed then.
			s.log.Warn("live subscribe failed", logger.String("figi", figi), logger.Error(err))
		}
	}
	return nil
}

// Subscriptions returns the number of tracked instruments.
func (s *StreamIngestor) Subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.figis)
}

// Run drives the connect/read/reconnect loop until the context is cancelled.
// Stream failures never propagate to callers.
func (s *StreamIngestor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := s.dialer.Dial(ctx)
		if err != nil {
			s.metrics.RecordError("stream_dial")
			s.log.Error("stream dial failed", logger.Error(err))
			if !s.sleep(ctx) {
				return
			}
			continue
		}

		if err := s.resubscribe(conn); err != nil {
			s.log.Error("resubscribe failed", logger.Error(err))
			conn.Close()
			s.metrics.RecordStreamReconnect()
			if !s.sleep(ctx) {
				return
			}
			continue
		}

		s.readLoop(ctx, conn)

		s.setConn(nil)
		conn.Close()
		s.metrics.RecordStreamReconnect()
		if !s.sleep(ctx) {
			return
		}
	}
}

func (s *StreamIngestor) readLoop(ctx context.Context, conn repository.StreamConn) {
	s.setConn(conn)
	s.log.Info("stream connected", logger.Int("subscriptions", s.Subscriptions()))

	for {
		if ctx.Err() != nil {
			return
		}
		snapshot, err := conn.ReadSnapshot()
		if err != nil {
			if ctx.Err() == nil {
				s.metrics.RecordError("stream_read")
				s.log.Warn("stream read failed, reconnecting", logger.Error(err))
			}
			return
		}
		s.sink.SetOrderBook(snapshot)
		s.metrics.RecordOrderBookUpdate(snapshot.FIGI)
	}
}

// resubscribe replays every tracked subscription on a fresh connection.
func (s *StreamIngestor) resubscribe(conn repository.StreamConn) error {
	s.mu.Lock()
	figis := make([]string, 0, len(s.figis))
	for figi := range s.figis {
		figis = append(figis, figi)
	}
	s.mu.Unlock()

	for _, figi := range figis {
		if err := conn.Subscribe(figi, s.cfg.Depth); err != nil {
			return fmt.Errorf("subscribe %s: %w", figi, err)
		}
	}
	return nil
}

func (s *StreamIngestor) setConn(conn repository.StreamConn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *StreamIngestor) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(s.cfg.ReconnectTimeout):
		return true
	}
}
