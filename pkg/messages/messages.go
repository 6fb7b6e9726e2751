// Package messages is the console output layer of the harness: leveled,
// colored one-liners plus the final suite report line.
package messages

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	infoColor  = color.New(color.FgCyan)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

func Info(format string, a ...interface{}) {
	infoColor.Fprintf(os.Stdout, "INFO: "+format+"\n", a...)
}

func OK(format string, a ...interface{}) {
	okColor.Fprintf(os.Stdout, "OK: "+format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	warnColor.Fprintf(os.Stderr, "WARNING: "+format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	errorColor.Fprintf(os.Stderr, "ERROR: "+format+"\n", a...)
}

// UsageError reports a bad invocation of prog.
func UsageError(prog string, err error) {
	errorColor.Fprintf(os.Stderr, "USAGE ERROR: %s: %v\n", prog, err)
}

// Report prints the final pass/fail summary line.
func Report(total, ok, errors int) {
	line := fmt.Sprintf("tests: %d, ok: %d, errors: %d", total, ok, errors)
	if errors > 0 {
		errorColor.Fprintln(os.Stdout, line)
	} else {
		okColor.Fprintln(os.Stdout, line)
	}
}
