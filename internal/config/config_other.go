//go:build !unix

package config

func targetSpecificInit() {
	readColorEnv()
	SHOULD_COLORIZE = !NO_COLOR && FORCE_COLOR
}
