package invest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// startStreamServer runs a WebSocket endpoint that records the first
// subscription it receives and then replays the given raw frames.
func startStreamServer(t *testing.T, frames []string) (*Dialer, chan subscribeMessage) {
	t.Helper()
	subs := make(chan subscribeMessage, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization header %q", got)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var msg subscribeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		subs <- msg

		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// Keep the connection open briefly so the client reads every frame.
		time.Sleep(50 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return NewDialer(wsURL, "test-token"), subs
}

func TestStreamSubscribeAndRead(t *testing.T) {
	frames := []string{
		`{"event": "ping"}`,
		`{"event": "orderbook", "payload": {"figi": "F1",
			"bids": [{"price": {"units": 100, "nano": 500000000}, "quantity": 10}],
			"asks": [{"price": {"units": 101}, "quantity": 5}]}}`,
	}
	dialer, subs := startStreamServer(t, frames)

	conn, err := dialer.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.Subscribe("F1", 10); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	select {
	case msg := <-subs:
		if msg.Event != "orderbook:subscribe" || msg.FIGI != "F1" || msg.Depth != 10 {
			t.Fatalf("unexpected subscribe message: %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the subscription")
	}

	// The ping frame must be skipped transparently.
	snap, err := conn.ReadSnapshot()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if snap.FIGI != "F1" {
		t.Fatalf("figi %q, want F1", snap.FIGI)
	}
	if len(snap.Bids) != 1 || snap.Bids[0].Price.String() != "100.5" || snap.Bids[0].Quantity != 10 {
		t.Fatalf("unexpected bids: %+v", snap.Bids)
	}
	if len(snap.Asks) != 1 || snap.Asks[0].Price.String() != "101" {
		t.Fatalf("unexpected asks: %+v", snap.Asks)
	}
	if snap.ObservedAt.IsZero() {
		t.Fatal("observed-at not set")
	}
}

func TestStreamReadFailsAfterClose(t *testing.T) {
	dialer, _ := startStreamServer(t, []string{`{"event": "orderbook", "payload": {"figi": "F1"}}`})

	conn, err := dialer.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.Subscribe("F1", 10); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := conn.ReadSnapshot(); err != nil {
		t.Fatalf("first read: %v", err)
	}

	// The server hangs up after its frames; the next read must error so the
	// ingestor can reconnect.
	if _, err := conn.ReadSnapshot(); err == nil {
		t.Fatal("expected read error after server close")
	}
}

func TestStreamMalformedFrame(t *testing.T) {
	dialer, _ := startStreamServer(t, []string{`not json`})

	conn, err := dialer.Dial(context.Background())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.Subscribe("F1", 10); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := conn.ReadSnapshot(); err == nil {
		t.Fatal("expected decode error for malformed frame")
	}
}

func TestSubscribeMessageShape(t *testing.T) {
	b, err := json.Marshal(subscribeMessage{Event: "orderbook:subscribe", FIGI: "F1", Depth: 10})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"event":"orderbook:subscribe","figi":"F1","depth":10}`
	if string(b) != want {
		t.Fatalf("wire shape %s, want %s", b, want)
	}
}
