package session

import (
	"sync"
	"testing"
	"time"
)

func TestDialogueProgression(t *testing.T) {
	store := NewStore(0)

	if got := store.Get("u1").State; got != StateIdle {
		t.Fatalf("fresh session state %v, want idle", got)
	}

	store.AwaitTicker("u1")
	if got := store.Get("u1").State; got != StateAwaitingTicker {
		t.Fatalf("state %v, want awaiting ticker", got)
	}

	store.SetTicker("u1", "SBER")
	sess := store.Get("u1")
	if sess.State != StateAwaitingMode {
		t.Fatalf("state %v, want awaiting mode", sess.State)
	}
	if sess.Ticker != "SBER" {
		t.Fatalf("ticker %q, want SBER", sess.Ticker)
	}

	store.Reset("u1")
	if got := store.Get("u1").State; got != StateIdle {
		t.Fatalf("state after reset %v, want idle", got)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	store := NewStore(0)

	store.SetTicker("u1", "SBER")
	store.AwaitTicker("u2")

	if got := store.Get("u1").Ticker; got != "SBER" {
		t.Fatalf("u1 ticker %q, want SBER", got)
	}
	if got := store.Get("u2").State; got != StateAwaitingTicker {
		t.Fatalf("u2 state %v, want awaiting ticker", got)
	}
	if got := store.Get("u3").State; got != StateIdle {
		t.Fatalf("u3 state %v, want idle", got)
	}
}

func TestSessionExpiry(t *testing.T) {
	store := NewStore(time.Millisecond)

	store.SetTicker("u1", "SBER")
	time.Sleep(5 * time.Millisecond)

	sess := store.Get("u1")
	if sess.State != StateIdle || sess.Ticker != "" {
		t.Fatalf("expected expired session to reset, got %+v", sess)
	}
}

func TestAwaitTickerClearsPreviousTicker(t *testing.T) {
	store := NewStore(0)

	store.SetTicker("u1", "SBER")
	store.AwaitTicker("u1")

	if got := store.Get("u1").Ticker; got != "" {
		t.Fatalf("ticker %q, want empty after restart", got)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.AwaitTicker(id)
				store.SetTicker(id, "SBER")
				store.Get(id)
				store.Reset(id)
			}
		}(string(rune('a' + i)))
	}
	wg.Wait()
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateIdle:           "idle",
		StateAwaitingTicker: "awaiting_ticker",
		StateAwaitingMode:   "awaiting_mode",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
