package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger backend, encoding and minimum level.
type Options struct {
	Backend string // "slog" or "zap"
	Format  string // "json" or "text"
	Level   string // "debug", "info", "warn" or "error"
}

// New builds a Logger writing to w. The returned flush function must be
// called before the process exits.
func New(w io.Writer, o Options) (Logger, func() error, error) {
	format := strings.ToLower(o.Format)
	if format != "json" && format != "text" {
		return nil, nil, fmt.Errorf("unknown log format %q", o.Format)
	}

	switch strings.ToLower(o.Backend) {
	case "", "slog":
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(o.Level)); err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		hopts := &slog.HandlerOptions{Level: lvl}
		var h slog.Handler = slog.NewJSONHandler(w, hopts)
		if format == "text" {
			h = slog.NewTextHandler(w, hopts)
		}
		return NewSlogLogger(slog.New(h)), func() error { return nil }, nil

	case "zap":
		lvl, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc := zapcore.NewJSONEncoder(encCfg)
		if format == "text" {
			enc = zapcore.NewConsoleEncoder(encCfg)
		}
		zl := NewZapLogger(zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)))
		return zl, zl.Sync, nil

	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", o.Backend)
	}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) Logger                  { return n }
