package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that every setting the server cannot run without
// is present.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.DBUser == "" {
		errors = append(errors, "DB_USER is not set")
	}
	if cfg.DBPassword == "" {
		errors = append(errors, "DB_PASSWORD is not set")
	}
	if cfg.DBName == "" {
		errors = append(errors, "DB_NAME is not set")
	}
	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is not set")
	}
	if cfg.ServerPort == "" {
		errors = append(errors, "SERVER_PORT is not set")
	}

	if len(errors) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errors, "; "))
	}
	return nil
}
