// Package logging provides per-component loggers backed by a shared file
// sink. The TUI owns the terminal, so nothing here ever writes to stdout.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	output io.Writer = io.Discard
)

// SetOutput points all component loggers at the given log file. Call once at
// startup, before NewLogger.
func SetOutput(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	output = f
	return nil
}

// NewLogger returns a pre-configured logger for a component. One logger is
// kept per component name.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if entry, ok := loggers[component]; ok {
		return entry
	}

	logger := logrus.New()
	logger.SetOutput(output)

	level := logrus.InfoLevel
	if lvl := os.Getenv("FORGE_LOG_LEVEL"); lvl != "" {
		if parsed, err := logrus.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}
