package memory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseMem0EntriesBareArray(t *testing.T) {
	raw := json.RawMessage(`[{"memory":"первый факт"},{"memory":"  второй  "},{"memory":""}]`)
	got := parseMem0Entries(raw)
	if len(got) != 2 || got[0] != "первый факт" || got[1] != "второй" {
		t.Errorf("parsed %v", got)
	}
}

func TestParseMem0EntriesWrappedResults(t *testing.T) {
	raw := json.RawMessage(`{"results":[{"memory":"обёрнутый факт"}]}`)
	got := parseMem0Entries(raw)
	if len(got) != 1 || got[0] != "обёрнутый факт" {
		t.Errorf("parsed %v", got)
	}
}

func TestParseMem0EntriesGarbage(t *testing.T) {
	if got := parseMem0Entries(json.RawMessage(`"oops"`)); got != nil {
		t.Errorf("garbage payload parsed to %v", got)
	}
}

func TestMem0SearchAbsorbsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newMem0Client("key", srv.URL)
	got, err := c.Search(context.Background(), "u1", "q", 5)
	if err != nil {
		t.Fatalf("search must not propagate backend errors, got %v", err)
	}
	if got != nil {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestMem0AddSendsMessagePair(t *testing.T) {
	var captured mem0AddRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/memories/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Token key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newMem0Client("key", srv.URL)
	if err := c.Add(context.Background(), "u1", "вопрос", "ответ"); err != nil {
		t.Fatal(err)
	}

	if captured.UserID != "u1" || len(captured.Messages) != 2 {
		t.Fatalf("captured request %+v", captured)
	}
	if captured.Messages[0].Role != "user" || captured.Messages[0].Content != "вопрос" {
		t.Errorf("user message wrong: %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "assistant" || captured.Messages[1].Content != "ответ" {
		t.Errorf("assistant message wrong: %+v", captured.Messages[1])
	}
}

func TestMem0PingRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newMem0Client("bad-key", srv.URL)
	if err := c.ping(context.Background()); err == nil {
		t.Error("ping should fail on 401")
	}
}
