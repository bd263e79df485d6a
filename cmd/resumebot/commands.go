package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fayzullaev/resumebot/internal/config"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the profile and document files",
	Long: `Build the vector index without starting the server.

Indexes the embedded profile record into the CV collection and chunks the
résumé file plus everything under the docs directory into the knowledge
base. Indexing is idempotent: an already populated collection is left
untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		ctx := context.Background()
		printStep("building vector index in %s", cfg.Storage.DataDir)

		deps, cleanup, err := buildMemory(ctx, cfg)
		if err != nil {
			printError("indexing failed: %v", err)
			return err
		}
		defer cleanup()

		kbCount, _ := deps.kb.Count(ctx)
		cvCount, _ := deps.cv.Count(ctx)
		printSuccess("index ready")
		printStatus("CV fragments", "%d", cvCount)
		printStatus("KB fragments", "%d", kbCount)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show memory subsystem status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		ctx := context.Background()
		deps, cleanup, err := buildMemory(ctx, cfg)
		if err != nil {
			printError("could not open memory subsystem: %v", err)
			return err
		}
		defer cleanup()

		printStep("memory diagnostics")
		printStatus("model", "%s", cfg.Gemini.Model)
		printStatus("data dir", "%s", cfg.Storage.DataDir)
		printStatus("report", "\n%s", deps.manager.Diagnostics(ctx))
		return nil
	},
}
