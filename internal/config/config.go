// Package config loads runtime configuration from the environment.
//
// Values come from defaults, then an optional .env file, then RESUMEBOT_*
// (and a few well-known vendor) environment variables. Secrets are only ever
// read from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Telegram  TelegramConfig
	Gemini    GeminiConfig
	Mem0      Mem0Config
	Storage   StorageConfig
	Retrieval RetrievalConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int
	// APIToken guards the management endpoints; empty disables them.
	APIToken string
	// WebhookBaseURL, when set, is registered with Telegram on startup.
	WebhookBaseURL string
}

type TelegramConfig struct {
	// BotToken authorizes calls to the Telegram Bot API and doubles as the
	// webhook path secret.
	BotToken string
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type Mem0Config struct {
	APIKey  string
	BaseURL string
}

type StorageConfig struct {
	// DataDir holds the vector database, preference file and docs folder.
	DataDir string
	// DocsDir is scanned for loose documents at index time.
	DocsDir string
	// ResumePath is a single résumé document ingested into the knowledge base.
	ResumePath string
}

type RetrievalConfig struct {
	// KBThreshold and CVThreshold filter query results by similarity score.
	// They differ on purpose: CV retrieval is the primary path and stays
	// high-recall.
	KBThreshold float64
	CVThreshold float64
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{Port: 4000},
		Gemini: GeminiConfig{
			Model:      "gemini-2.0-flash-001",
			EmbedModel: "text-embedding-004",
		},
		Mem0: Mem0Config{BaseURL: "https://api.mem0.ai"},
		Storage: StorageConfig{
			DataDir:    defaultDataDir(),
			DocsDir:    "docs",
			ResumePath: "CV.pdf",
		},
		Retrieval: RetrievalConfig{
			KBThreshold: 0.3,
			CVThreshold: 0.2,
		},
		Log: LogConfig{Level: "info"},
	}
}

// defaultDataDir picks a writable location. On serverless platforms the
// working directory is read-only, so state moves to /tmp and does not
// survive cold starts.
func defaultDataDir() string {
	if os.Getenv("VERCEL") != "" || os.Getenv("VC_ENV") != "" {
		return filepath.Join(os.TempDir(), "resumebot")
	}
	return "data"
}

// Load builds the configuration from defaults, an optional .env file, and
// environment variable overrides. The Gemini API key is required: without it
// the system has neither retrieval nor generation capability.
func Load() (Config, error) {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg := defaults()
	applyEnvOverrides(&cfg)

	if cfg.Gemini.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: Gemini API key. Set GEMINI_API_KEY or RESUMEBOT_GEMINI_API_KEY")
	}

	return cfg, nil
}

// LoadForServe is Load plus the checks only the webhook server needs.
func LoadForServe() (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}
	if cfg.Telegram.BotToken == "" {
		return Config{}, fmt.Errorf("missing required config: Telegram bot token. Set TELEGRAM_BOT_TOKEN or RESUMEBOT_TELEGRAM_BOT_TOKEN")
	}
	return cfg, nil
}
