package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a JSON field name to the reason it was rejected
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return strings.ToLower(fld.Name)
			}
			return name
		})
		validate.RegisterValidation("nopassword", func(fl validator.FieldLevel) bool {
			return !strings.Contains(strings.ToLower(fl.Field().String()), "password")
		})
	})
	return validate
}

// ValidateUser normalizes u and checks the field rules
func ValidateUser(u *User) error {
	u.Normalize()
	return validateStruct(u)
}

// ValidateTask normalizes t and checks the field rules
func ValidateTask(t *Task) error {
	t.Normalize()
	return validateStruct(t)
}

func validateStruct(s any) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := FieldErrors{}
	for _, v := range verrs {
		fe[v.Field()] = describe(v)
	}
	return fe
}

func describe(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "min":
		return fmt.Sprintf("must be at least %s characters", v.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", v.Param())
	case "gte":
		return "must be a positive number"
	case "nopassword":
		return `must not contain "password"`
	}
	return "is invalid"
}
