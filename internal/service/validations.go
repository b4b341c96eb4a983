package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/pkg/entity"
)

// Package for custom validations
var (
	validate *validator.Validate
	once     sync.Once
)

func InitValidator() {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("alphanum_underscore", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			for i, char := range value {
				// Cannot be started with a digit or underscore
				if i == 0 && (unicode.IsDigit(char) || char == '_') {
					return false
				}
				// Digits, letters or underscore
				if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
					return false
				}
			}
			return true
		})
		validate.RegisterValidation("breed", func(fl validator.FieldLevel) bool {
			return entity.Breed(fl.Field().String()).Valid()
		})
	})
}

type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field. It matches errorvalues.ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == errorvalues.ErrValidation
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.New("validation unexpected error: " + err.Error())
	}
	verr := &ValidationError{}
	for _, fieldErr := range validationErrors {
		verr.Fields = append(verr.Fields, FieldError{
			Field:   jsonName(fieldErr.Field()),
			Message: fieldMessage(fieldErr),
		})
	}
	return verr
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "email":
		return "must be a valid email address"
	case "alphanum_underscore":
		return "may contain only letters, digits and underscores and must start with a letter"
	case "breed":
		return fmt.Sprintf("must be one of %s, %s, %s", entity.BreedDalmatian, entity.BreedGoldenRetriever, entity.BreedLabrador)
	}
	return "is invalid"
}
