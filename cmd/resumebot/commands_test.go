package main

import (
	"strings"
	"testing"
)

func TestPaintRespectsNoColor(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	if got := paint(ansiGreen, "text"); strings.Contains(got, "\033[") {
		t.Errorf("paint with noColor=true should not contain ANSI codes, got %q", got)
	}

	noColor = false
	if got := paint(ansiGreen, "text"); !strings.Contains(got, "\033[") {
		t.Errorf("paint with noColor=false should contain ANSI codes, got %q", got)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := map[string]bool{"serve": false, "index": false, "status": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestServeFailsWithoutTelegramToken(t *testing.T) {
	for _, env := range []string{
		"RESUMEBOT_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN",
	} {
		t.Setenv(env, "")
	}
	t.Setenv("GEMINI_API_KEY", "test-key")

	if err := runServe(); err == nil || !strings.Contains(err.Error(), "Telegram bot token") {
		t.Errorf("serve without token returned %v", err)
	}
}
