package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBaseURL("test-key", srv.URL)
}

func TestGenerate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected request body: %+v", req)
		}

		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{
				{Content: content{Parts: []part{{Text: "  world  "}}}},
			},
		})
	})

	out, err := c.Generate(context.Background(), "gemini-test", "hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "world" {
		t.Errorf("got %q, want %q", out, "world")
	}
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	})

	out, err := c.Generate(context.Background(), "gemini-test", "hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "" {
		t.Errorf("got %q, want empty", out)
	}
}

func TestGenerate_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := c.Generate(context.Background(), "gemini-test", "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry status: %v", err)
	}
}

func TestEmbed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":embedContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var resp embedResponse
		resp.Embedding.Values = []float32{0.1, 0.2, 0.3}
		json.NewEncoder(w).Encode(resp)
	})

	vec, err := c.Embed(context.Background(), "text-embedding-004", "some text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("got %d dims, want 3", len(vec))
	}
}

func TestEmbed_EmptyVectorIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{})
	})

	if _, err := c.Embed(context.Background(), "text-embedding-004", "text"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

func TestTranslate_StripsRegion(t *testing.T) {
	var gotPrompt string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Contents[0].Parts[0].Text
		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{
				{Content: content{Parts: []part{{Text: "привет"}}}},
			},
		})
	})

	out, err := c.Translate(context.Background(), "gemini-test", "hello", "ru-RU")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "привет" {
		t.Errorf("got %q", out)
	}
	if !strings.Contains(gotPrompt, "'ru'") {
		t.Errorf("prompt should use bare language code: %q", gotPrompt)
	}
}
