// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/chanthanathaicook/backend/internal/config"
)

// Setup applies cfg to the standard logrus logger and returns it.  An
// unknown level falls back to info rather than aborting startup.
func Setup(cfg config.LogConfig) *log.Logger {
	logger := log.StandardLogger()
	logger.SetOutput(output(cfg))

	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&log.TextFormatter{
			PadLevelText:    true,
			DisableColors:   cfg.File != "",
			FullTimestamp:   true,
			TimestampFormat: time.DateTime,
		})
	}
	return logger
}

func output(cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB, // megabytes
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays, // days
		Compress:   true,
	}
}
