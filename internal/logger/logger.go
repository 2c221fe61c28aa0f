package logger

import (
	"go.uber.org/zap"
)

// NewNamed creates a named zap logger configured for the given environment.
// Development uses the human-readable console encoder; everything else emits
// production JSON.
func NewNamed(env, service string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Named(service), nil
}
