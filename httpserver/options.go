package httpserver

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"moviecatalog/pkg/config"
)

type Options func(s *Server) error

// WithConfig applies the port and CORS origins of cfg. An empty origin list
// keeps the default of allowing every origin.
func WithConfig(cfg *config.Config) Options {
	return func(s *Server) error {
		if cfg == nil {
			return errors.New("httpserver: nil config")
		}
		s.Config = cfg
		if cfg.Port > 0 {
			s.Addr = fmt.Sprintf(":%d", cfg.Port)
		}
		if origins := splitOrigins(cfg.AllowOrigins); len(origins) > 0 {
			s.AllowOrigins = origins
		}
		return nil
	}
}

func WithLogger(l *zap.SugaredLogger) Options {
	return func(s *Server) error {
		if l != nil {
			s.Logger = l
		}
		return nil
	}
}
