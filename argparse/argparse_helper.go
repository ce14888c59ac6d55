package argparse

import (
	"fmt"
	"os"
	"strconv"
)

// ExitFunc is the interface for exiting the program
type ExitFunc func(int)

// StderrWriter is the interface for writing to stderr
type StderrWriter interface {
	Write([]byte) (int, error)
}

// StdoutWriter is the interface for writing to stdout
type StdoutWriter interface {
	Write([]byte) (int, error)
}

var osExit ExitFunc = os.Exit
var stderrWriter StderrWriter = os.Stderr
var stdoutWriter StdoutWriter = os.Stdout

// SetStderrWriter allows overriding the stderr writer for testing or custom output
func SetStderrWriter(writer StderrWriter) {
	stderrWriter = writer
}

// SetStdoutWriter allows overriding the stdout writer for testing or custom output
func SetStdoutWriter(writer StdoutWriter) {
	stdoutWriter = writer
}

// SetExitFunc allows overriding the exit function for testing
func SetExitFunc(exitFunc ExitFunc) {
	osExit = exitFunc
}

// ExitWithError reports a setup error the way ParseOrExit reports a
// ProgrammingError: message only, exit status 1.
func ExitWithError(err error) {
	fmt.Fprintln(stderrWriter, err.Error())
	osExit(1)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNegativeNumber(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	if !isDigit(s[1]) && s[1] != '.' {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
