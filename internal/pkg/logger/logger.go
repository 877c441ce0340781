package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New returns a JSON production logger, or a console logger with debug level
// for local and development environments.
func New(env string) (*zap.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "", "local", "dev", "development", "test":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}
