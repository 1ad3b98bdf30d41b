// Package logging provides the shared logrus setup and Gin middleware for
// HTTP request logging and panic recovery.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupBaseLogger configures the global logrus logger with a timestamped
// text formatter. Called once from main before anything logs.
func SetupBaseLogger() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stderr)
}

// Options controls log level and optional file rotation.
type Options struct {
	// Level is a logrus level name; unknown values fall back to info.
	Level string
	// File, when non-empty, routes output through a rotating file writer.
	File string
	// MaxSizeMB is the rotation threshold.
	MaxSizeMB int
	// MaxBackups is how many rotated files to keep.
	MaxBackups int
}

// Configure applies level and output options to the global logger.
func Configure(opts Options) {
	level, err := log.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if opts.File == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
	// Keep stderr visible alongside the file for interactive runs.
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
