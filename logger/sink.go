package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 5
	defaultMaxAgeDays = 30
)

// sink is where encoded entries go. closer is nil unless a rotating file was
// opened.
type sink struct {
	io.Writer
	closer io.Closer
}

// openSink writes to stdout and, when a path is configured, to a rotating
// file readable only by the service user. A file that cannot be opened
// degrades to stdout with a warning on stderr.
func openSink(cfg Config) sink {
	if cfg.Output != nil {
		return sink{Writer: cfg.Output}
	}
	if cfg.LogFilePath == "" {
		return sink{Writer: os.Stdout}
	}

	dir := filepath.Dir(cfg.LogFilePath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "logger: cannot create %s (%v), writing to stdout only\n", dir, err)
		return sink{Writer: os.Stdout}
	}

	file := &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    orDefault(cfg.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: orDefault(cfg.MaxBackups, defaultMaxBackups),
		MaxAge:     orDefault(cfg.MaxAgeDays, defaultMaxAgeDays),
		Compress:   true,
	}
	return sink{Writer: io.MultiWriter(os.Stdout, file), closer: file}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
