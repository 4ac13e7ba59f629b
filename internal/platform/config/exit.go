package config

import (
	"fmt"
	"io"
	"os"
)

var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// Exitf prints a fatal command error to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	ExitCode(1, format, args...)
}

// ExitCode exits with code, printing the formatted message to stderr first
// unless format is empty. Failures already reported elsewhere pass "".
func ExitCode(code int, format string, args ...any) {
	if format != "" {
		fmt.Fprintf(stderr, format+"\n", args...)
	}
	exit(code)
}
