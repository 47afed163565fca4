package common

import (
	"fmt"
	"io"
	"os"

	logging "gopkg.in/op/go-logging.v1"
)

const logFormat = `%{time:2006-01-02 15:04:05.000} %{level:.1s} %{module}: %{message}`

// LoggerWrapper is what every package of gccinv logs through.
// Info messages have a verbosity: they are printed only if it doesn't exceed the configured one,
// so `Info(0, ...)` is always printed and `Info(2, ...)` only for debugging.
// Warnings and errors are printed always.
type LoggerWrapper struct {
	impl      *logging.Logger
	verbosity int
	file      *os.File // nil for stderr
}

// MakeLogger creates a logger writing to fileName ("stderr" or "" means stderr).
// If duplicateToStderr is set, errors written to a file are also printed to stderr.
func MakeLogger(module string, fileName string, verbosity int, duplicateToStderr bool) (*LoggerWrapper, error) {
	logger := &LoggerWrapper{
		verbosity: verbosity,
	}

	var out io.Writer = os.Stderr
	if fileName != "" && fileName != "stderr" {
		if err := MkdirForFile(fileName); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("can't open log file %s: %w", fileName, err)
		}
		logger.file = f
		out = f
	}

	logger.impl = makeGoLogger(module, out, logger.file != nil && duplicateToStderr)
	return logger, nil
}

// MakeLoggerForWriter is used in tests to capture output.
func MakeLoggerForWriter(module string, w io.Writer, verbosity int) *LoggerWrapper {
	return &LoggerWrapper{
		impl:      makeGoLogger(module, w, false),
		verbosity: verbosity,
	}
}

func makeGoLogger(module string, out io.Writer, errorsToStderr bool) *logging.Logger {
	formatter := logging.MustStringFormatter(logFormat)

	main := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(out, "", 0), formatter))
	main.SetLevel(logging.DEBUG, module)

	impl := logging.MustGetLogger(module)
	if errorsToStderr {
		stderr := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), formatter))
		stderr.SetLevel(logging.ERROR, module)
		impl.SetBackend(logging.MultiLogger(main, stderr))
	} else {
		impl.SetBackend(main)
	}
	return impl
}

func (logger *LoggerWrapper) Verbosity() int {
	return logger.verbosity
}

func (logger *LoggerWrapper) Info(verbosity int, v ...any) {
	if logger.verbosity >= verbosity {
		logger.impl.Info(v...)
	}
}

func (logger *LoggerWrapper) Warning(v ...any) {
	logger.impl.Warning(v...)
}

func (logger *LoggerWrapper) Error(v ...any) {
	logger.impl.Error(v...)
}

func (logger *LoggerWrapper) Close() {
	if logger.file != nil {
		_ = logger.file.Close()
		logger.file = nil
	}
}
