package config

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogWriter is the writer used for database logs; InitLogging tees it to the log file.
var LogWriter io.Writer = os.Stdout

// LogFilePath returns the path to the backend log file.
func LogFilePath() string {
	return filepath.Join("logs", "rms-api.log")
}

// InitLogging builds the zap logger, installs it globally and points LogWriter at
// stdout plus the log file. The returned file is nil when it could not be opened.
func InitLogging(cfg Config) (*zap.Logger, *os.File) {
	var encoderCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	level := zap.NewAtomicLevelAt(zap.DebugLevel)

	if cfg.IsProduction() {
		encoderCfg = zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
		level.SetLevel(zap.InfoLevel)
	} else {
		encoderCfg = zap.NewDevelopmentEncoderConfig()
		encoderCfg.TimeKey = "timestamp"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	if cfg.LogLevel != "" {
		var parsed zapcore.Level
		if err := parsed.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
			level.SetLevel(parsed)
		}
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	var logFile *os.File
	if err := os.MkdirAll(filepath.Dir(LogFilePath()), os.ModePerm); err == nil {
		logFile, err = os.OpenFile(LogFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logFile = nil
		}
	}
	if logFile != nil {
		sinks = append(sinks, zapcore.AddSync(logFile))
		LogWriter = io.MultiWriter(os.Stdout, logFile)
	} else {
		LogWriter = os.Stdout
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	zap.ReplaceGlobals(logger)

	if logFile == nil {
		logger.Warn("Failed to open log file, logging to stdout only", zap.String("path", LogFilePath()))
	}
	return logger, logFile
}
