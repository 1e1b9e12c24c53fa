// Package submission validates resource proposals and relays them to the
// submission webhook.
package submission

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form is a proposed resource as entered by a visitor.
type Form struct {
	URL         string `json:"url" form:"url" validate:"required,max=2048,httpurl"`
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Email       string `json:"email" form:"email" validate:"required,max=254,email"`
	XUsername   string `json:"xUsername" form:"xUsername" validate:"max=50"`
	Description string `json:"description" form:"description" validate:"max=2000"`
	Category    string `json:"category" form:"category" validate:"max=100"`
	Tags        string `json:"tags" form:"tags" validate:"max=300"`
}

// ValidationError lists the fields that failed validation, keyed by their
// JSON name.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for n := range e.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid submission: %s", strings.Join(names, ", "))
}

// Field returns the message for name, or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("httpurl", validateHTTPURL)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Normalize trims surrounding whitespace from every field and strips a
// leading "@" from the X username.
func (f *Form) Normalize() {
	f.URL = strings.TrimSpace(f.URL)
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.XUsername = strings.TrimPrefix(strings.TrimSpace(f.XUsername), "@")
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	f.Tags = strings.TrimSpace(f.Tags)
}

// Validate checks f and returns a *ValidationError describing every bad field.
func (f Form) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate submission: %w", err)
	}
	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		ve.Fields[fe.Field()] = message(fe)
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "httpurl":
		return "Enter a valid link starting with http:// or https://."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Keep this under %s characters.", fe.Param())
	}
	return "This value is not valid."
}
