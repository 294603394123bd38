package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"backoffice-api/internal/config"
)

// New builds the application logger: JSON in production, human-readable in
// development.
func New(cfg *config.Config) (*zap.Logger, error) {
	var logConfig zap.Config
	if cfg.Server.Env == "production" {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(level)

	return logConfig.Build()
}
