package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console logger writing timestamped, level-tagged lines to stderr.
func New(debug bool) *zap.Logger {
	return zap.New(zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), level(debug)))
}

// WithFile returns a logger that tees the console output into an append-mode
// log file, plus a close function for the file sink. The original logger is
// returned unchanged when the file cannot be opened; a session should not die
// because its log file is unwritable.
func WithFile(base *zap.Logger, path string, debug bool) (*zap.Logger, func() error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		base.Warn("could not open log file, continuing with console only",
			zap.String("path", path), zap.Error(err))
		return base, func() error { return nil }
	}

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), level(debug)),
		zapcore.NewCore(consoleEncoder(), zapcore.AddSync(f), level(debug)),
	)
	return zap.New(core), f.Close
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func level(debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
