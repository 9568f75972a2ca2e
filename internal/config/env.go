package config

import "os"

func readColorEnv() {
	if s, ok := os.LookupEnv("FORCE_COLOR"); ok {
		FORCE_COLOR = isTruthy(s)
	}
	if s, ok := os.LookupEnv("NO_COLOR"); ok {
		NO_COLOR = isTruthy(s)
	}
}

func isTruthy(s string) bool {
	return len(s) != 0 && s != "false" && s != "0"
}
