package forms

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Forms validated locally before any network call. Violations are
// rejected without spending a round-trip on the backend.

type Login struct {
	Email      string `validate:"required,contains=@"`
	Password   string `validate:"required,min=8"`
	RememberMe bool
}

type Signup struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,contains=@"`
	Password string `validate:"required,min=8"`
}

type PasswordReset struct {
	Token       string `validate:"required"`
	NewPassword string `validate:"required,min=8"`
}

type PasswordChange struct {
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required,min=8"`
}

var (
	once     sync.Once
	validate *validator.Validate
)

func lazyinit() {
	once.Do(func() {
		validate = validator.New()
	})
}

// Validate checks a form and converts the first violation into a
// message fit for display.
func Validate(form any) error {
	lazyinit()

	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errors.New(messageFor(fieldErrs[0]))
	}
	return err
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "Email":
		return "please enter a valid email address"
	case "Password", "NewPassword":
		if fe.Tag() == "min" {
			return "password must be at least 8 characters long"
		}
		return "password is required"
	case "Name":
		return "name is required"
	case "Token":
		return "reset token is required"
	case "CurrentPassword":
		return "current password is required"
	}
	return "invalid " + fe.Field()
}
