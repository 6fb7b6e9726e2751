package main

import "fmt"

// configError marks a missing or unusable required parameter (exit 4).
type configError struct {
	msg string
}

func (e *configError) Error() string { return e.msg }

func newConfigError(format string, a ...interface{}) *configError {
	return &configError{msg: fmt.Sprintf(format, a...)}
}

// runtimeError marks any failure after option handling succeeded (exit 3):
// connect failures, I/O errors, sink errors.
type runtimeError struct {
	err error
}

func (e *runtimeError) Error() string { return e.err.Error() }
func (e *runtimeError) Unwrap() error { return e.err }

func newRuntimeError(format string, a ...interface{}) *runtimeError {
	return &runtimeError{err: fmt.Errorf(format, a...)}
}

// failuresError marks a run that completed with failing tests (exit 5).
type failuresError struct {
	errors int
}

func (e *failuresError) Error() string {
	return fmt.Sprintf("%d test(s) failed", e.errors)
}
