package config

import (
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
)

var validSecurityTypes = []string{"ssl", "starttls", "none"}

// Validator collects human readable configuration problems.
type Validator struct {
	errors []string
}

func NewValidator() *Validator {
	return &Validator{errors: make([]string, 0)}
}

// Validate checks everything the pipeline needs before it connects anywhere.
func (cv *Validator) Validate(cfg Config) []string {
	cv.errors = make([]string, 0)

	cv.validateIMAP(cfg.IMAP)
	cv.validateClassifier(cfg.Classifier)
	cv.validatePoll(cfg.Poll)
	cv.validateUnsubscribe(cfg.Unsubscribe)
	cv.validateReport(cfg.Report)

	return cv.errors
}

func (cv *Validator) addError(message string) {
	cv.errors = append(cv.errors, message)
	slog.Debug("Config validation error", "error", message)
}

func (cv *Validator) validateIMAP(c IMAP) {
	if c.Server == "" {
		cv.addError("IMAP server is required")
	}

	if c.Port <= 0 || c.Port > 65535 {
		cv.addError("IMAP port must be between 1 and 65535")
	}

	if !slices.Contains(validSecurityTypes, c.Security) {
		cv.addError("IMAP security must be one of: ssl, starttls, none")
	}

	if c.Username == "" {
		cv.addError("IMAP username is required")
	}

	if c.Password == "" {
		cv.addError("IMAP password is required")
	}
}

func (cv *Validator) validateClassifier(c Classifier) {
	// 0 would flag every message as spam
	if c.Threshold <= 0 || c.Threshold > 1 {
		cv.addError(fmt.Sprintf("Classifier threshold must be within (0,1], got %v", c.Threshold))
	}
}

func (cv *Validator) validatePoll(p Poll) {
	if p.Interval <= 0 {
		cv.addError("Poll interval must be positive")
	}

	if p.Backoff <= 0 {
		cv.addError("Reconnect backoff must be positive")
	}
}

func (cv *Validator) validateUnsubscribe(u Unsubscribe) {
	if u.Timeout <= 0 {
		cv.addError("Unsubscribe timeout must be positive")
	}

	if u.Rate <= 0 {
		cv.addError("Unsubscribe rate must be positive")
	}
}

func (cv *Validator) validateReport(r Report) {
	if len(r.To) == 0 {
		return
	}

	if r.SMTP.Server == "" {
		cv.addError("SMTP server is required when report recipients are configured")
	}

	if r.SMTP.Port <= 0 || r.SMTP.Port > 65535 {
		cv.addError("SMTP port must be between 1 and 65535")
	}

	if !slices.Contains(validSecurityTypes, r.SMTP.Security) {
		cv.addError("SMTP security must be one of: ssl, starttls, none")
	}

	for _, recipient := range r.To {
		if recipient == "" {
			cv.addError("Empty report recipient found")
			continue
		}

		if _, err := mail.ParseAddress(recipient); err != nil {
			cv.addError(fmt.Sprintf("Invalid email format in report recipient: %s", recipient))
		}
	}
}
