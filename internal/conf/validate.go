package conf

import (
	"fmt"
	"net/url"
	"strings"
)

// minPollIntervalMs guards against hammering the detection service.
const minPollIntervalMs = 1000

// ValidateSettings checks the loaded configuration for obvious mistakes.
func ValidateSettings(settings *Settings) error {
	var errs []string

	if err := validateServiceSettings(&settings.Service); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSessionSettings(&settings.Session); err != nil {
		errs = append(errs, err.Error())
	}
	if settings.Telemetry.Enabled && settings.Telemetry.Listen == "" {
		errs = append(errs, "telemetry listen address required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServiceSettings(s *ServiceSettings) error {
	if s.BaseURL == "" {
		return fmt.Errorf("service base URL is required")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("service base URL %q is not a valid URL", s.BaseURL)
	}
	if s.PollIntervalMs < minPollIntervalMs {
		return fmt.Errorf("poll interval %dms below minimum %dms", s.PollIntervalMs, minPollIntervalMs)
	}
	if s.TimeoutSec <= 0 {
		return fmt.Errorf("request timeout must be positive, got %ds", s.TimeoutSec)
	}
	if s.PageSize <= 0 || s.PageSize > 1000 {
		return fmt.Errorf("page size must be between 1 and 1000, got %d", s.PageSize)
	}
	return nil
}

func validateSessionSettings(s *SessionSettings) error {
	switch strings.ToLower(s.Role) {
	case "admin", "stationmaster":
		return nil
	default:
		return fmt.Errorf("session role must be admin or stationmaster, got %q", s.Role)
	}
}
