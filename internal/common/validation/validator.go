// Package validation checks request bodies and configuration structs against
// their `validate` struct tags.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const sep = " and "

// Custom tags registered on every validator.
const (
	SlugTag  = "slug"
	LabelTag = "label"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	labelPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9:_-]{0,31}$`)
)

var custom = map[string]validator.Func{
	SlugTag:  validateSlug,
	LabelTag: validateLabel,
}

// Error describes one failed field.
type Error struct {
	FailedField string      `json:"field"`
	Tag         string      `json:"tag"`
	Value       interface{} `json:"value,omitempty"`
}

// Validator wraps go-playground/validator with the custom tags above.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, fn := range custom {
		_ = v.RegisterValidation(tag, fn)
	}
	return &Validator{validate: v}
}

// Validate returns one Error per failed field, or nil when data is valid.
func (x *Validator) Validate(data interface{}) []Error {
	err := x.validate.Struct(data)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Error{{FailedField: "", Tag: err.Error()}}
	}

	out := make([]Error, 0, len(validationErrors))
	for _, fe := range validationErrors {
		out = append(out, Error{
			FailedField: fe.Namespace(),
			Tag:         fe.Tag(),
			Value:       fe.Value(),
		})
	}
	return out
}

// Join renders errs with format, which receives the field and the tag.
func Join(errs []Error, format string) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf(format, e.FailedField, e.Tag))
	}
	return strings.Join(msgs, sep)
}

// Fields maps each failed field to its tag.
func Fields(errs []Error) map[string]interface{} {
	out := make(map[string]interface{}, len(errs))
	for _, e := range errs {
		out[e.FailedField] = e.Tag
	}
	return out
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func validateLabel(fl validator.FieldLevel) bool {
	return labelPattern.MatchString(fl.Field().String())
}
