package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultMem0BaseURL = "https://api.mem0.ai"

// mem0Client is the hosted episodic backend: a thin client for the Mem0
// platform REST API.
type mem0Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newMem0Client(apiKey, baseURL string) *mem0Client {
	if baseURL == "" {
		baseURL = defaultMem0BaseURL
	}
	return &mem0Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *mem0Client) Kind() string { return "hosted" }

// ping verifies the credential before the backend is selected.
func (c *mem0Client) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/ping/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping returned status %d", resp.StatusCode)
	}
	return nil
}

type mem0Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mem0AddRequest struct {
	Messages []mem0Message `json:"messages"`
	UserID   string        `json:"user_id"`
}

// Add stores one exchange as a message pair. Failures are logged, never
// propagated: episodic memory is best-effort.
func (c *mem0Client) Add(ctx context.Context, userID, query, response string) error {
	body := mem0AddRequest{
		Messages: []mem0Message{
			{Role: "user", Content: query},
			{Role: "assistant", Content: response},
		},
		UserID: userID,
	}

	if err := c.post(ctx, "/v1/memories/", body, nil); err != nil {
		slog.Warn("episodic add failed", "error", err)
	}
	return nil
}

type mem0SearchRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

type mem0Entry struct {
	Memory string `json:"memory"`
}

// Search queries the hosted memory. A failing backend yields an empty
// result, never an error.
func (c *mem0Client) Search(ctx context.Context, userID, query string, k int) ([]string, error) {
	body := mem0SearchRequest{Query: query, UserID: userID, Limit: k}

	var raw json.RawMessage
	if err := c.post(ctx, "/v1/memories/search/", body, &raw); err != nil {
		slog.Warn("episodic search failed", "error", err)
		return nil, nil
	}

	entries := parseMem0Entries(raw)
	if len(entries) > k {
		entries = entries[:k]
	}
	return entries, nil
}

// parseMem0Entries accepts both response shapes the platform has used: a
// bare array of entries, or an object with a "results" array.
func parseMem0Entries(raw json.RawMessage) []string {
	var entries []mem0Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		var wrapped struct {
			Results []mem0Entry `json:"results"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil
		}
		entries = wrapped.Results
	}

	memories := make([]string, 0, len(entries))
	for _, e := range entries {
		if text := strings.TrimSpace(e.Memory); text != "" {
			memories = append(memories, text)
		}
	}
	return memories
}

func (c *mem0Client) post(ctx context.Context, path string, in any, out *json.RawMessage) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling mem0: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("mem0 returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		*out = data
	}
	return nil
}
