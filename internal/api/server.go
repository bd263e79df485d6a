// Package api exposes the HTTP surface: the Telegram webhook, a health
// probe, and bearer-protected management endpoints.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fayzullaev/resumebot/internal/chunk"
	"github.com/fayzullaev/resumebot/internal/memory"
	"github.com/fayzullaev/resumebot/internal/retrieval"
	"github.com/fayzullaev/resumebot/internal/telegram"
)

const maxRequestBodySize = 1 << 20 // 1MB

// UpdateHandler consumes webhook updates.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd telegram.Update)
}

// MemoryReader is the read side of the memory subsystem used by the
// management endpoints.
type MemoryReader interface {
	Context(ctx context.Context, query, userID string) string
	Diagnostics(ctx context.Context) string
}

// Deps holds everything the HTTP surface needs.
type Deps struct {
	Updates UpdateHandler
	Memory  MemoryReader
	KB      memory.Source
	// WebhookToken is the bot token segment expected in the webhook path.
	WebhookToken string
	// MgmtToken guards the management endpoints. Empty disables them.
	MgmtToken string
}

// NewHandler builds the router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/webhook/{token}", handleWebhook(deps))

	if deps.MgmtToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(bearerAuth(deps.MgmtToken))
			r.Get("/diagnostics", handleDiagnostics(deps))
			r.Get("/context", handleContext(deps))
			r.Post("/ingest", handleIngest(deps))
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleWebhook verifies the path token and dispatches the update. The
// response is always 200 for valid tokens: Telegram re-delivers updates on
// any other status and the handler already absorbs its own failures.
func handleWebhook(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(deps.WebhookToken)) != 1 {
			httpError(w, http.StatusNotFound, "not_found", "unknown webhook")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var upd telegram.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid update payload: %v", err)
			return
		}

		deps.Updates.HandleUpdate(r.Context(), upd)
		w.WriteHeader(http.StatusOK)
	}
}

func handleDiagnostics(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"diagnostics": deps.Memory.Diagnostics(r.Context()),
		})
	}
}

// handleContext returns the assembled context for a query, for inspecting
// what the model would actually see.
func handleContext(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query parameter q is required")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"context": deps.Memory.Context(r.Context(), query, r.URL.Query().Get("user")),
		})
	}
}

type ingestRequest struct {
	Prefix  string `json:"prefix"`
	Content string `json:"content"`
}

// handleIngest chunks submitted text into the knowledge base.
func handleIngest(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ingestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
			return
		}
		if req.Prefix == "" {
			req.Prefix = "doc"
		}

		frags := chunk.Split(req.Content, req.Prefix, chunk.DefaultSize, chunk.DefaultOverlap)
		converted := make([]retrieval.Fragment, len(frags))
		for i, f := range frags {
			converted[i] = retrieval.Fragment{ID: f.ID, Text: f.Text}
		}
		if err := deps.KB.Add(r.Context(), converted); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "indexing failed: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"chunks": len(frags)})
	}
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || subtle.ConstantTimeCompare([]byte(auth[len(prefix):]), []byte(token)) != 1 {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
