package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates that the command clashes with existing state (duplicate codes,
// overpayments, accounts still carrying a balance).
var ErrConflict = errors.New("conflict")

// ErrState indicates an illegal lifecycle transition, e.g. posting an entry that is not a draft.
var ErrState = errors.New("invalid state transition")

// ErrConsistency indicates that a ledger invariant was found violated. It is never the
// caller's fault.
var ErrConsistency = errors.New("ledger consistency violation")

// Validation errors.
var (
	ErrInvalidCategory  = fmt.Errorf("%w: invalid account category", ErrValidation)
	ErrUnknownAccount   = fmt.Errorf("%w: unknown account", ErrValidation)
	ErrInactiveAccount  = fmt.Errorf("%w: inactive account", ErrValidation)
	ErrMalformedLine    = fmt.Errorf("%w: malformed journal line", ErrValidation)
	ErrUnbalancedEntry  = fmt.Errorf("%w: unbalanced entry", ErrValidation)
	ErrEmptyEntry       = fmt.Errorf("%w: empty entry", ErrValidation)
	ErrUnknownTaxCode   = fmt.Errorf("%w: unknown tax code", ErrValidation)
	ErrUnknownJournal   = fmt.Errorf("%w: unknown journal", ErrValidation)
	ErrInvalidPageToken = fmt.Errorf("%w: invalid page token", ErrValidation)
	ErrAmountOutOfRange = fmt.Errorf("%w: amount out of range", ErrValidation)
)

// Conflict errors.
var (
	ErrDuplicateCode         = fmt.Errorf("%w: duplicate code", ErrConflict)
	ErrAccountInUse          = fmt.Errorf("%w: account has a nonzero balance", ErrConflict)
	ErrOverpayment           = fmt.Errorf("%w: payment exceeds amount due", ErrConflict)
	ErrValuationMethodLocked = fmt.Errorf("%w: valuation method locked by stock history", ErrConflict)
	ErrInsufficientStock     = fmt.Errorf("%w: insufficient stock on hand", ErrConflict)
	ErrAppendOnly            = fmt.Errorf("%w: posted entries are immutable", ErrConflict)
)

// FieldError reports which field of a command failed which rule. It unwraps to the
// underlying error so errors.Is keeps working against the sentinels above.
type FieldError struct {
	Field string
	Rule  string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s (%s)", e.Err, e.Rule)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Err, e.Field, e.Rule)
}

func (e *FieldError) Unwrap() error { return e.Err }

// NewFieldError wraps err with the offending field and rule.
func NewFieldError(err error, field, rule string) error {
	return &FieldError{Field: field, Rule: rule, Err: err}
}

// AsFieldError extracts the field detail from err, if any.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
