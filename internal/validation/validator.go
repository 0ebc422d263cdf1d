// Package validation implements the payload rules for books with
// go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"bookshelf/internal/book"
)

// Gate validates book payloads. It implements book.Validator.
type Gate struct {
	validate *validator.Validate
	// jsonNames maps Go field names of book.Input to their JSON keys.
	jsonNames map[string]string
}

// New returns a Gate with the custom rules registered.
func New() *Gate {
	v := validator.New()

	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("notblank", validateNotBlank)

	names := make(map[string]string)
	t := reflect.TypeOf(book.Input{})
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() {
			names[f.Name] = jsonName(f)
		}
	}

	return &Gate{validate: v, jsonNames: names}
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidateCreate checks every rule.
func (g *Gate) ValidateCreate(in book.Input) error {
	return g.toError(g.validate.Struct(in))
}

// ValidateUpdate checks only the fields the payload carries. A present
// field still has to satisfy its rules, so an explicit null title fails.
func (g *Gate) ValidateUpdate(in book.Input) error {
	err := g.validate.StructFiltered(in, func(ns []byte) bool {
		name := string(ns)
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		return !in.Has(g.jsonNames[name])
	})
	return g.toError(err)
}

func (g *Gate) toError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return book.NewValidationError(err.Error(), nil)
	}

	fields := make([]book.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, book.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return book.NewValidationError("Invalid data - "+summary(fields), fields)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func summary(fields []book.FieldError) string {
	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}
