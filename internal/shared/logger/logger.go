// Package logger wires slog with a tint console handler for development and
// a JSON handler for production. Source location is attached to warn/error
// records only unless debug mode is enabled.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	sharedConfig "nomadly/internal/shared/config"
)

var (
	Logger      *slog.Logger
	atomicLevel *slog.LevelVar
)

func Init(cfg *sharedConfig.LoggerConfig, debugMode bool) error {
	atomicLevel = new(slog.LevelVar)
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	atomicLevel.Set(level)

	var writer io.Writer
	switch strings.ToLower(cfg.OutputPath) {
	case "stdout", "":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		file, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writer = file
	}

	showSourceLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if debugMode {
		showSourceLevels = []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		base := slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level:     atomicLevel,
			AddSource: false,
		})
		handler = NewConditionalSourceHandler(base, showSourceLevels...)
	} else {
		base := tint.NewHandler(writer, tintOptions(atomicLevel, !isTerminal(writer)))
		handler = NewConditionalSourceHandler(base, showSourceLevels...)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	return nil
}

func tintOptions(level slog.Leveler, noColor bool) *tint.Options {
	return &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		AddSource:  false,
		NoColor:    noColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" && a.Value.Kind() == slog.KindAny {
				if err, ok := a.Value.Any().(error); ok {
					return tint.Err(err)
				}
			}
			return a
		},
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func SetLevel(level slog.Level) {
	if atomicLevel != nil {
		atomicLevel.Set(level)
	}
}

// Get returns the configured logger, falling back to a sane console logger
// when Init has not been called (tests, one-off commands).
func Get() *slog.Logger {
	if Logger == nil {
		base := tint.NewHandler(os.Stdout, tintOptions(slog.LevelInfo, !isTerminal(os.Stdout)))
		Logger = slog.New(NewConditionalSourceHandler(base, slog.LevelWarn, slog.LevelError))
		slog.SetDefault(Logger)
	}
	return Logger
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

func Named(name string) *slog.Logger {
	return Get().With("logger", name)
}
