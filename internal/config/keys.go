package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

// keySpec maps one config key to its environment variables. envAliases are
// checked after env, first non-empty wins; they cover the vendor-standard
// names the original deployment used.
type keySpec struct {
	key        string
	typ        keyType
	env        string
	envAliases []string
	apply      func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "RESUMEBOT_SERVER_PORT", envAliases: []string{"PORT"},
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		key: "server.api_token", typ: kString, env: "RESUMEBOT_API_TOKEN",
		apply: func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
	},
	{
		key: "server.webhook_base_url", typ: kString, env: "RESUMEBOT_WEBHOOK_BASE_URL",
		envAliases: []string{"WEBHOOK_BASE_URL"},
		apply:      func(cfg *Config, v any) { cfg.Server.WebhookBaseURL = v.(string) },
	},
	{
		key: "telegram.bot_token", typ: kString, env: "RESUMEBOT_TELEGRAM_BOT_TOKEN",
		envAliases: []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN"},
		apply:      func(cfg *Config, v any) { cfg.Telegram.BotToken = v.(string) },
	},
	{
		key: "gemini.api_key", typ: kString, env: "RESUMEBOT_GEMINI_API_KEY",
		envAliases: []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		apply:      func(cfg *Config, v any) { cfg.Gemini.APIKey = v.(string) },
	},
	{
		key: "gemini.model", typ: kString, env: "RESUMEBOT_GEMINI_MODEL", envAliases: []string{"GEMINI_MODEL"},
		apply: func(cfg *Config, v any) { cfg.Gemini.Model = v.(string) },
	},
	{
		key: "gemini.embed_model", typ: kString, env: "RESUMEBOT_GEMINI_EMBED_MODEL",
		apply: func(cfg *Config, v any) { cfg.Gemini.EmbedModel = v.(string) },
	},
	{
		key: "mem0.api_key", typ: kString, env: "RESUMEBOT_MEM0_API_KEY", envAliases: []string{"MEM0_API_KEY"},
		apply: func(cfg *Config, v any) { cfg.Mem0.APIKey = v.(string) },
	},
	{
		key: "mem0.base_url", typ: kString, env: "RESUMEBOT_MEM0_BASE_URL",
		apply: func(cfg *Config, v any) { cfg.Mem0.BaseURL = v.(string) },
	},
	{
		key: "storage.data_dir", typ: kString, env: "RESUMEBOT_STORAGE_DATA_DIR",
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		key: "storage.docs_dir", typ: kString, env: "RESUMEBOT_STORAGE_DOCS_DIR",
		apply: func(cfg *Config, v any) { cfg.Storage.DocsDir = v.(string) },
	},
	{
		key: "storage.resume_path", typ: kString, env: "RESUMEBOT_STORAGE_RESUME_PATH",
		apply: func(cfg *Config, v any) { cfg.Storage.ResumePath = v.(string) },
	},
	{
		key: "retrieval.kb_threshold", typ: kFloat, env: "RESUMEBOT_RETRIEVAL_KB_THRESHOLD",
		apply: func(cfg *Config, v any) { cfg.Retrieval.KBThreshold = v.(float64) },
	},
	{
		key: "retrieval.cv_threshold", typ: kFloat, env: "RESUMEBOT_RETRIEVAL_CV_THRESHOLD",
		apply: func(cfg *Config, v any) { cfg.Retrieval.CVThreshold = v.(float64) },
	},
	{
		key: "log.level", typ: kString, env: "RESUMEBOT_LOG_LEVEL",
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			for _, alias := range s.envAliases {
				if raw = os.Getenv(alias); raw != "" {
					break
				}
			}
		}
		if raw == "" {
			continue
		}

		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			v, err := strconv.Atoi(raw)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse int from %s=%q: %v. Using default value.\n", s.env, raw, err)
				continue
			}
			s.apply(cfg, v)
		case kFloat:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from %s=%q: %v. Using default value.\n", s.env, raw, err)
				continue
			}
			s.apply(cfg, v)
		}
	}
}
