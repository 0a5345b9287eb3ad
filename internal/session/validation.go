package session

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/desertthunder/reelx/internal/shared"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
)

// messages maps "Field.tag" to the text shown next to the form field.
var messages = map[string]string{
	"Name.required":            "Name is required",
	"Email.required":           "Email is required",
	"Email.email_address":      "Invalid email address",
	"Password.required":        "Password is required",
	"Password.min":             "Password must be at least 6 characters",
	"ConfirmPassword.required": "Please confirm your password",
	"ConfirmPassword.eqfield":  "Passwords do not match",
	"AcceptTerms.eq":           "You must accept the terms and conditions",
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("email_address", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// validateForm checks a login or registration form and reports the first failing field.
func validateForm(form any) error {
	err := getValidator().Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &shared.ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = fe.Field() + " is invalid"
	}
	return &shared.ValidationError{Field: strings.ToLower(fe.Field()), Message: msg}
}
