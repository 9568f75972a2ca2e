//go:build unix

package config

import (
	"os"
	"strings"
)

func targetSpecificInit() {
	readColorEnv()

	// TERM

	term := os.Getenv("TERM")
	colorTerm := os.Getenv("COLORTERM") == "truecolor" || strings.Contains(term, "256color") || strings.Contains(term, "color")

	SHOULD_COLORIZE = !NO_COLOR && (FORCE_COLOR || colorTerm)
}
