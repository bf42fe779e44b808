package dto

import (
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
)

// DateLayout is the wire format of ledger dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD value (an RFC3339 timestamp is accepted and truncated).
// field names the request field for the error.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperrors.NewFieldError(apperrors.ErrValidation, field, "required")
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.NewFieldError(apperrors.ErrValidation, field, "date YYYY-MM-DD")
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// ParseOptionalDate is ParseDate for values that may be omitted.
func ParseOptionalDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return ParseDate(field, value)
}

// FormatDate renders t in DateLayout, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// ErrorResponse is the body of every failed request. Field and Rule are set when
// a single input field was rejected.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Rule  string `json:"rule,omitempty"`
}
