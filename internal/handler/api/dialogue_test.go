package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func (f *apiFixture) dialogue(t *testing.T, sessionID, input string) (*httptest.ResponseRecorder, DialogueReply) {
	t.Helper()

	payload, _ := json.Marshal(DialogueRequest{SessionID: sessionID, Input: input})
	req := httptest.NewRequest(http.MethodPost, "/api/dialogue", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	var body struct {
		Data DialogueReply `json:"data"`
	}
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, body.Data
}

func TestDialogueFullFlow(t *testing.T) {
	fix := newAPIFixture(t, nil)

	rec, reply := fix.dialogue(t, "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("step 1 status %d", rec.Code)
	}
	if reply.State != "awaiting_ticker" {
		t.Fatalf("step 1 state %q, want awaiting_ticker", reply.State)
	}

	rec, reply = fix.dialogue(t, "u1", "sber")
	if rec.Code != http.StatusOK {
		t.Fatalf("step 2 status %d", rec.Code)
	}
	if reply.State != "awaiting_mode" {
		t.Fatalf("step 2 state %q, want awaiting_mode", reply.State)
	}

	rec, reply = fix.dialogue(t, "u1", "short_term")
	if rec.Code != http.StatusOK {
		t.Fatalf("step 3 status %d: %s", rec.Code, rec.Body.String())
	}
	if reply.Result == nil {
		t.Fatal("expected an analysis result")
	}
	if reply.Result.Ticker != "SBER" {
		t.Fatalf("result ticker %q, want SBER", reply.Result.Ticker)
	}
	if reply.State != "idle" {
		t.Fatalf("final state %q, want idle", reply.State)
	}
}

func TestDialogueDefaultMode(t *testing.T) {
	fix := newAPIFixture(t, nil)

	fix.dialogue(t, "u1", "")
	fix.dialogue(t, "u1", "GAZP")

	// Empty mode input selects the default profile.
	rec, reply := fix.dialogue(t, "u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if reply.Result == nil || reply.Result.Ticker != "GAZP" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestDialogueUnknownTickerRestarts(t *testing.T) {
	fix := newAPIFixture(t, nil)

	fix.dialogue(t, "u1", "")
	fix.dialogue(t, "u1", "ZZZZ")

	rec, _ := fix.dialogue(t, "u1", "short_term")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}

	// The session was reset: the next step starts over.
	_, reply := fix.dialogue(t, "u1", "")
	if reply.State != "awaiting_ticker" {
		t.Fatalf("state %q, want awaiting_ticker after restart", reply.State)
	}
}

func TestDialogueSessionsIsolated(t *testing.T) {
	fix := newAPIFixture(t, nil)

	fix.dialogue(t, "u1", "")
	fix.dialogue(t, "u1", "SBER")

	_, reply := fix.dialogue(t, "u2", "")
	if reply.State != "awaiting_ticker" {
		t.Fatalf("u2 state %q, want awaiting_ticker", reply.State)
	}
}

func TestDialogueMissingSessionID(t *testing.T) {
	fix := newAPIFixture(t, nil)

	rec, _ := fix.dialogue(t, "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
