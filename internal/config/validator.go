package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate validates the Config using struct tags and custom cross-field
// rules. Returns an error with actionable messages on failure.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return c.validateEnabledProviders()
}

// validateEnabledProviders ensures every enabled provider carries a
// client ID. A disabled provider may leave it empty.
func (c *Config) validateEnabledProviders() error {
	checks := []struct {
		name string
		p    ProviderConfig
	}{
		{"google", c.Providers.Google},
		{"apple", c.Providers.Apple},
		{"kakao", c.Providers.Kakao},
	}
	for _, check := range checks {
		if check.p.Enabled && check.p.ClientID == "" {
			return fmt.Errorf("providers.%s: client_id is required when enabled", check.name)
		}
	}
	return nil
}

// formatValidationErrors turns validator errors into readable messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Namespace())
		field = strings.TrimPrefix(field, "config.")
		switch fieldErr.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, fieldErr.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fieldErr.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
