// Package gemini is a minimal HTTP client for the Google Generative Language
// API, covering the three calls the assistant needs: text generation, text
// embedding and translation.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client communicates with the Generative Language REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client with the given API key.
func New(apiKey string) *Client {
	return NewWithBaseURL(apiKey, defaultBaseURL)
}

// NewWithBaseURL creates a Client against a custom endpoint (used by tests).
func NewWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends a single-turn prompt to the given model and returns the
// concatenated response text. An empty response is returned as ("", nil);
// callers decide on fallback wording.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	var resp generateResponse
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	if err := c.post(ctx, url, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

type embedRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embed returns the embedding vector for text using the given embedding model.
func (c *Client) Embed(ctx context.Context, model, text string) ([]float32, error) {
	req := embedRequest{
		Model:   "models/" + model,
		Content: content{Parts: []part{{Text: text}}},
	}

	var resp embedResponse
	url := fmt.Sprintf("%s/v1beta/models/%s:embedContent?key=%s", c.baseURL, model, c.apiKey)
	if err := c.post(ctx, url, req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding for %d-char text", len(text))
	}
	return resp.Embedding.Values, nil
}

// Translate renders text in the target language ("ru-RU" style tags are
// reduced to their language part). The model is asked to return only the
// translation.
func (c *Client) Translate(ctx context.Context, model, text, targetLang string) (string, error) {
	lang := targetLang
	if i := strings.IndexByte(lang, '-'); i > 0 {
		lang = lang[:i]
	}
	if lang == "" {
		lang = "ru"
	}

	prompt := fmt.Sprintf("Переведи аккуратно и естественно на язык '%s'. Верни только перевод, без пояснений:\n\n%s", lang, text)
	out, err := c.Generate(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("translating to %s: %w", lang, err)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
