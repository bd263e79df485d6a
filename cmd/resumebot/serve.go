package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/fayzullaev/resumebot/internal/agent"
	"github.com/fayzullaev/resumebot/internal/api"
	"github.com/fayzullaev/resumebot/internal/config"
	"github.com/fayzullaev/resumebot/internal/gemini"
	"github.com/fayzullaev/resumebot/internal/memory"
	"github.com/fayzullaev/resumebot/internal/prefs"
	"github.com/fayzullaev/resumebot/internal/profile"
	"github.com/fayzullaev/resumebot/internal/retrieval"
	"github.com/fayzullaev/resumebot/internal/speech"
	"github.com/fayzullaev/resumebot/internal/telegram"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	fmt.Fprintf(os.Stderr, "resumebot version %s\n", version)

	cfg, err := config.LoadForServe()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildMemory(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	prof, err := profile.Load()
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	bot := agent.New(deps.gemini, cfg.Gemini.Model, deps.manager, prof)
	prefStore := prefs.NewStore(filepath.Join(cfg.Storage.DataDir, "user_prefs.json"))

	tgClient := telegram.NewClient(cfg.Telegram.BotToken)
	updates := telegram.NewHandler(tgClient, bot, deps.manager, prefStore,
		deps.gemini, speech.Disabled{}, cfg.Gemini.Model)

	if cfg.Server.WebhookBaseURL != "" {
		url := strings.TrimRight(cfg.Server.WebhookBaseURL, "/") + "/webhook/" + cfg.Telegram.BotToken
		if err := tgClient.SetWebhook(ctx, url); err != nil {
			printWarning("could not register webhook: %v", err)
		} else {
			printSuccess("webhook registered")
		}
	}

	handler := api.NewHandler(api.Deps{
		Updates:      updates,
		Memory:       deps.manager,
		KB:           deps.kb,
		WebhookToken: cfg.Telegram.BotToken,
		MgmtToken:    cfg.Server.APIToken,
	})

	// MCP over stdio runs alongside the HTTP server.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Memory: deps.manager,
		KB:     deps.kb,
		CV:     deps.cv,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "resumebot listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupLogging(cfg config.Config) {
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// memoryDeps bundles the wired memory subsystem.
type memoryDeps struct {
	gemini  *gemini.Client
	kb      *retrieval.Collection
	cv      *retrieval.Collection
	manager *memory.Manager
}

// buildMemory opens storage, indexes the CV and documents, selects the
// episodic backend and assembles the manager. The returned cleanup closes
// the store.
func buildMemory(ctx context.Context, cfg config.Config) (memoryDeps, func(), error) {
	gem := gemini.New(cfg.Gemini.APIKey)
	embedder := retrieval.NewEmbedder(gem, cfg.Gemini.EmbedModel)

	store, err := retrieval.Open(cfg.Storage.DataDir)
	if err != nil {
		return memoryDeps{}, nil, fmt.Errorf("opening storage: %w", err)
	}

	kb := retrieval.NewCollection(store, embedder, retrieval.KB)
	cv := retrieval.NewCollection(store, embedder, retrieval.CV)

	prof, err := profile.Load()
	if err != nil {
		store.Close()
		return memoryDeps{}, nil, fmt.Errorf("loading profile: %w", err)
	}

	indexer := memory.NewIndexer(kb, cv)
	if err := indexer.IndexCV(ctx, prof); err != nil {
		store.Close()
		return memoryDeps{}, nil, fmt.Errorf("indexing CV: %w", err)
	}
	indexer.IngestResume(ctx, cfg.Storage.ResumePath)
	indexer.IngestDocs(ctx, cfg.Storage.DocsDir)

	episodic := memory.NewEpisodic(ctx, memory.EpisodicConfig{
		Mem0APIKey:  cfg.Mem0.APIKey,
		Mem0BaseURL: cfg.Mem0.BaseURL,
		Embedder:    embedder,
		DataDir:     cfg.Storage.DataDir,
	})

	manager := memory.NewManager(episodic, kb, cv, memory.NewDialogBuffer(),
		cfg.Retrieval.KBThreshold, cfg.Retrieval.CVThreshold)

	return memoryDeps{
		gemini:  gem,
		kb:      kb,
		cv:      cv,
		manager: manager,
	}, func() { store.Close() }, nil
}
