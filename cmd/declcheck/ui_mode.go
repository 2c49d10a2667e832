package main

import (
	"fmt"
	"os"
	"strings"
)

// progressView resolves --ui for a check run. Only the pretty format has a
// live view; auto draws it when stderr is a terminal outside CI.
func progressView(flag, format string) (bool, error) {
	var on bool
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "", "auto":
		on = os.Getenv("CI") == "" && isTerminal(os.Stderr)
	case "on":
		on = true
	case "off":
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", flag)
	}
	return on && format == "pretty", nil
}
