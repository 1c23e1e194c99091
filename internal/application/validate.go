package application

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/atvirokodosprendimai/pressroom/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type CreateAccountInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type UpdateAccountInput struct {
	FirstName *string `json:"first_name" validate:"omitnil,min=1"`
	LastName  *string `json:"last_name" validate:"omitnil,min=1"`
	Email     *string `json:"email" validate:"omitnil,email"`
}

type CreateProfileInput struct {
	AccountID   uint   `json:"account_id" validate:"required"`
	Description string `json:"description"`
}

type UpdateProfileInput struct {
	Description *string `json:"description"`
}

type CreateContentInput struct {
	AccountID uint     `json:"account_id" validate:"required"`
	Title     string   `json:"title" validate:"required"`
	Body      string   `json:"body" validate:"required"`
	Status    string   `json:"status"`
	TagNames  []string `json:"tag_names"`
}

type UpdateContentInput struct {
	Title  *string `json:"title" validate:"omitnil,min=5"`
	Body   *string `json:"body" validate:"omitnil,min=1"`
	Status *string `json:"status"`
}

type CreateTagInput struct {
	Name string `json:"name" validate:"required"`
}

type UpdateTagInput struct {
	Name *string `json:"name" validate:"omitnil,min=1"`
}

// validateInput translates the first validator failure into the domain's
// field-and-reason form.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.Invalid(fe.Field(), reasonFor(fe))
	}
	return err
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return "is invalid"
	}
}
