package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

func TestAnyToStr(t *testing.T) {

	tests := []struct {
		T    any
		TStr string
	}{
		{10, "10"},
		{-10, "-10"},
		{true, "true"},
		{"test", "test"},
		{"", ""},
		{nil, "<nil>"},
		{struct{}{}, "{}"},
		{[]int{1, 2, 3}, "[1 2 3]"},
	}

	for _, x := range tests {
		res := AnyToStr(x.T)
		if x.TStr != res {
			t.Fatalf("failed: %s != %s", x.TStr, res)
		}
	}
}

func TestTemplSessionErrJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)

	sessionId := gofakeit.UUID()
	errorId := GenErrorId()

	got := l.TemplSessionErr("verify failed", errorId, sessionId, decimal.RequireFromString("1.2345"), "/v1/payments/verify-txn", "127.0.0.1")
	if got != errorId {
		t.Fatalf("got error id %s, want %s", got, errorId)
	}

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"msg":        "verify failed",
		"level":      "ERROR",
		"stream":     "sessions",
		"session_id": sessionId,
		"amount":     "1.2345",
		"error_id":   errorId,
	}
	for k, v := range tests {
		if record[k] != v {
			t.Fatalf("%s: got %v, want %s", k, record[k], v)
		}
	}

	if _, ok := record["source"]; !ok {
		t.Fatal("source is missing")
	}
}

func TestTemplFatal(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)

	l.TemplHTTPError("listen failed", "0.0.0.0:8080", errors.New("address in use"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatal(err)
	}
	if record["fatal"] != true || record["stream"] != "fatal" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestGenErrorId(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := GenErrorId()
		if id == NA || seen[id] {
			t.Fatalf("bad error id: %s", id)
		}
		seen[id] = true
	}
}

func TestZeroLogger(t *testing.T) {
	var l Logger
	l.Info("dropped", LS_SESSIONS, false)
}
