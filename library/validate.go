package library

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/models"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// bcrypt refuses passwords longer than this many bytes.
const maxPasswordBytes = 72

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("label"); name != "" {
			return name
		}
		return strings.ToLower(f.Name)
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	_ = v.RegisterValidation("icon", func(fl validator.FieldLevel) bool {
		icon := fl.Field().Int()
		return icon >= 0 && icon <= models.MaxIcon
	})
	return v
}

type RegisterInput struct {
	Username string `validate:"required,max=20,username"`
	Password string `validate:"min=5,max=40,bcryptlen"`
	Icon     int    `validate:"icon"`
}

type CardInput struct {
	Word       string `validate:"max=50"`
	Definition string `validate:"max=250"`
}

// CardUpdate replaces the fields that are set. Publish only ever moves a card
// from draft to published.
type CardUpdate struct {
	Word       *string
	Definition *string
	Publish    bool
}

type SetUpdate struct {
	Name    *string
	Publish bool
}

type setInput struct {
	Name string `validate:"required,max=50"`
}

type iconInput struct {
	Icon int `validate:"icon"`
}

// check validates v and reports the first failing field as invalid input.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Invalid(fieldMessage(verrs[0]))
	}
	return apperr.Wrap(apperr.InvalidInput, "Invalid data", err)
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "username":
		return "username may only contain letters, numbers, '-' and '_'"
	case "bcryptlen":
		return fmt.Sprintf("%s must be at most %d bytes", name, maxPasswordBytes)
	case "icon":
		return fmt.Sprintf("%s must be between 0 and %d", name, models.MaxIcon)
	case "min", "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s %s characters", name, bound(fe.Tag()), fe.Param())
		}
		return fmt.Sprintf("%s must be %s %s", name, bound(fe.Tag()), fe.Param())
	}
	return "Invalid " + name
}

func bound(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}
