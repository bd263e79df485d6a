package main

import (
	"fmt"
	"os"
)

// ANSI codes for terminal feedback, suppressed by --no-color.
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiBold   = "\033[1m"
)

func paint(code, text string) string {
	if noColor {
		return text
	}
	return code + text + ansiReset
}

// report writes one marked, colored line to stderr.
func report(code, mark, format string, args ...any) {
	fmt.Fprintln(os.Stderr, paint(code, mark+" "+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { report(ansiGreen, "✓", format, args...) }
func printError(format string, args ...any)   { report(ansiRed, "✗", format, args...) }
func printWarning(format string, args ...any) { report(ansiYellow, "⚠", format, args...) }
func printStep(format string, args ...any)    { report(ansiBlue, "→", format, args...) }

func printStatus(label, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", paint(ansiBold, label+":"), fmt.Sprintf(format, args...))
}
