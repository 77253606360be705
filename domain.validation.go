package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

// newValidator returns a validator reporting fields by their json name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// same rule as IDsHandler.ParseRecordID, unlike the builtin lowercase-only mongodb tag.
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		_, err := primitive.ObjectIDFromHex(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateInput checks a write payload against its `validate` tags and
// converts any violation into a *ValidationError listing every field.
func ValidateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	verr := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldErrorMessage(fe),
		})
	}
	return verr
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return missingFieldError(fe.Field()).Error()
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	case "objectid":
		return fmt.Sprintf("%s must be a valid identifier", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
