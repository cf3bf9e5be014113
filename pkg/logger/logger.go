package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Service string
	Level   string // debug, info, warn, error
	Output  io.Writer
}

var (
	mu     sync.RWMutex
	global = defaultLogger()
)

// stderr looks up os.Stderr on every write.
type stderr struct{}

func (stderr) Write(p []byte) (int, error) { return os.Stderr.Write(p) }

// defaultLogger serves L() until Setup runs, so startup failures still reach stderr.
func defaultLogger() *slog.Logger {
	return newLogger(Config{Output: stderr{}})
}

// Setup installs the process-wide JSON logger and returns it.
func Setup(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	l := newLogger(cfg)

	mu.Lock()
	global = l
	mu.Unlock()

	return l
}

func newLogger(cfg Config) *slog.Logger {
	h := slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	})

	l := slog.New(h)
	if cfg.Service != "" {
		l = l.With("service", cfg.Service)
	}
	return l
}

func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
