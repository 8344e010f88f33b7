package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Setup builds a logger that writes human-readable lines to stdout and JSON
// lines to <logDir>/<serviceName>.log, tags every entry with the service
// name and routes the standard library logger through it. Callers should
// Sync the logger and close the file on shutdown.
func Setup(serviceName, logDir string) (*zap.Logger, *os.File, error) {
	return SetupLevel(serviceName, logDir, "info")
}

// SetupLevel is Setup with an explicit minimum level ("debug", "info", ...).
func SetupLevel(serviceName, logDir, level string) (*zap.Logger, *os.File, error) {
	if logDir == "" {
		logDir = ".log"
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, err
	}
	logPath := filepath.Join(logDir, serviceName+".log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		file.Close()
		return nil, nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), lvl),
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), lvl),
	)
	logger := zap.New(core).With(zap.String("service", serviceName))
	zap.RedirectStdLog(logger)
	return logger, file, nil
}
