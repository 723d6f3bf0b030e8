package config

import (
	"errors"
	"strings"
)

// ValidateCore checks the settings every service needs before it can start.
func (c *Config) ValidateCore() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" || c.JWT.Secret == "change-this-secret" {
		return errors.New("JWT_SECRET must be set to a non-default value")
	}
	if c.Transfer.OTPAttempts < 1 {
		return errors.New("TRANSFER_OTP_ATTEMPTS must be at least 1")
	}
	if c.Transfer.OTPDigits < 4 || c.Transfer.OTPDigits > 10 {
		return errors.New("TRANSFER_OTP_DIGITS must be between 4 and 10")
	}
	return nil
}
