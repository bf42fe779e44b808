package handlers

import (
	"errors"
	"regexp"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var journalCodePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{0,9}$`)

// RegisterValidators adds the ledger's custom binding rules to gin's validator:
// journalcode (a letter then up to nine letters or digits) and accountcategory.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	if err := v.RegisterValidation("journalcode", validateJournalCode); err != nil {
		return err
	}
	return v.RegisterValidation("accountcategory", validateAccountCategory)
}

func validateJournalCode(fl validator.FieldLevel) bool {
	return journalCodePattern.MatchString(fl.Field().String())
}

func validateAccountCategory(fl validator.FieldLevel) bool {
	return domain.AccountCategory(strings.ToLower(fl.Field().String())).Valid()
}
