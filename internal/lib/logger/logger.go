// Package logger собирает *slog.Logger для окружения запуска.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/magabrotheeeer/entitlement-gate/internal/config"
)

// Setup возвращает логгер для env: local пишет текстом с уровнем debug,
// dev пишет JSON с debug, prod пишет JSON с info. Если задан logFile,
// записи дублируются в файл с ротацией. Возвращаемый io.Closer закрывает файл.
func Setup(env, logFile string) (*slog.Logger, io.Closer, error) {
	const op = "logger.Setup"

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, fileWriter)
		closer = fileWriter
	}

	return New(env, out), closer, nil
}

// New возвращает логгер для env, пишущий в out.
func New(env string, out io.Writer) *slog.Logger {
	switch env {
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
