package pulseboard

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logMaxSizeMB  = 10
	logMaxAgeDays = 14
	logMaxBackups = 5
)

// parseLogLevel maps a level name onto the echo logger levels.
func parseLogLevel(name string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return log.INFO, fmt.Errorf("unknown log level %q", name)
}

// configureLogger sets the echo logger level and, when LogFile is set, tees
// output into a size-rotated file. The returned closer releases the file.
func configureLogger(e *echo.Echo, cfg Config) (io.Closer, error) {
	lvl, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	e.Logger.SetLevel(lvl)
	e.Logger.SetPrefix("pulseboard")

	if cfg.LogFile == "" {
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    logMaxSizeMB,
		MaxAge:     logMaxAgeDays,
		MaxBackups: logMaxBackups,
		Compress:   true,
		LocalTime:  true,
	}
	e.Logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
