package config

// LogConfig drives internal/logging.  File is optional; when empty logs go
// to stdout.
type LogConfig struct {
	Level      string // trace, debug, info, warn, error
	Format     string // text or json
	File       string // rotated with lumberjack when set
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func LoadLogConfig() LogConfig {
	return LogConfig{
		Level:      envStr("LOG_LEVEL", "info"),
		Format:     envStr("LOG_FORMAT", "text"),
		File:       envStr("LOG_FILE", ""),
		MaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 32),
		MaxBackups: envInt("LOG_MAX_BACKUPS", 2),
		MaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 28),
	}
}
