// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log defines ldaudit's logger interface. By default it logs to stderr
// through the Go logger, but it can be replaced with a user-defined logger.
package log

import (
	"io"
	"log"
	"os"
)

// Logger is ldaudit's logging interface.
type Logger interface {
	// Logs in different log levels, either formatted or unformatted.
	Errorf(format string, args ...any)
	Error(args ...any)
	Warnf(format string, args ...any)
	Warn(args ...any)
	Infof(format string, args ...any)
	Info(args ...any)
	Debugf(format string, args ...any)
	Debug(args ...any)
}

var logger Logger = NewDefaultLogger(os.Stderr, false)

// SetLogger overwrites the default logger with a user specified one.
func SetLogger(l Logger) { logger = l }

// Errorf is the static formatted error logging function.
func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}

// Warnf is the static formatted warning logging function.
func Warnf(format string, args ...any) {
	logger.Warnf(format, args...)
}

// Infof is the static formatted info logging function.
func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

// Debugf is the static formatted debug logging function.
func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

// Error is the static error logging function.
func Error(args ...any) {
	logger.Error(args...)
}

// Warn is the static warning logging function.
func Warn(args ...any) {
	logger.Warn(args...)
}

// Info is the static info logging function.
func Info(args ...any) {
	logger.Info(args...)
}

// Debug is the static debug logging function.
func Debug(args ...any) {
	logger.Debug(args...)
}

// DefaultLogger is the Logger implementation used by default.
// It writes level-prefixed lines through a Go logger.
type DefaultLogger struct {
	Verbose bool // Whether debug logs should be shown.
	l       *log.Logger
}

// NewDefaultLogger returns a DefaultLogger writing to w.
func NewDefaultLogger(w io.Writer, verbose bool) *DefaultLogger {
	return &DefaultLogger{Verbose: verbose, l: log.New(w, "", log.LstdFlags)}
}

func (d *DefaultLogger) printf(level, format string, args ...any) {
	d.l.Printf(level+" "+format, args...)
}

func (d *DefaultLogger) println(level string, args ...any) {
	d.l.Println(append([]any{level}, args...)...)
}

// Errorf is the formatted error logging function.
func (d *DefaultLogger) Errorf(format string, args ...any) { d.printf("ERROR", format, args...) }

// Warnf is the formatted warning logging function.
func (d *DefaultLogger) Warnf(format string, args ...any) { d.printf("WARN", format, args...) }

// Infof is the formatted info logging function.
func (d *DefaultLogger) Infof(format string, args ...any) { d.printf("INFO", format, args...) }

// Debugf is the formatted debug logging function.
func (d *DefaultLogger) Debugf(format string, args ...any) {
	if d.Verbose {
		d.printf("DEBUG", format, args...)
	}
}

// Error is the error logging function.
func (d *DefaultLogger) Error(args ...any) { d.println("ERROR", args...) }

// Warn is the warning logging function.
func (d *DefaultLogger) Warn(args ...any) { d.println("WARN", args...) }

// Info is the info logging function.
func (d *DefaultLogger) Info(args ...any) { d.println("INFO", args...) }

// Debug is the debug logging function.
func (d *DefaultLogger) Debug(args ...any) {
	if d.Verbose {
		d.println("DEBUG", args...)
	}
}
