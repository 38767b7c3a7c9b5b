package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/civicvote/voting-system/internal/core/domain"
)

const minPasswordLength = 6

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
// Failures come back as *domain.ValidationError keyed by json field name.
type echoValidator struct {
	v *validator.Validate
}

func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("dob", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDateOfBirth(fl.Field().String())
		return err == nil
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := &domain.ValidationError{}
	for _, fe := range ve {
		out.Add(fe.Field(), fieldMessage(fe))
	}
	return out
}

// Messages for the checks registration and login have always reported.
var fixedMessages = map[string]string{
	"name.required":              "Name is required",
	"party.required":             "Party is required",
	"address.required":           "Address is required",
	"DoB.required":               "Date of birth is required",
	"citizenship.required":       "citizenship number is required",
	"email.required":             "Email is required",
	"password.strongpassword":    "password must be greater than 6 and contains at least one uppercase,lowercase,number and special character",
	"newPassword.strongpassword": "password must be greater than 6 and contains at least one uppercase,lowercase,number and special character",
	"phone.len":                  "phone number should be contains 10 digits",
	"phone.number":               "phone number should be contains 10 digits",
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	if msg, ok := fixedMessages[field+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "dob":
		return field + " must be a date formatted as YYYY-MM-DD"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "number", "numeric":
		return field + " must contain only digits"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func strongPassword(s string) bool {
	if len([]rune(s)) < minPasswordLength {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
