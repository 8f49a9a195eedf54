package form

import "github.com/idilsaglam/mytodo/internal/apperr"

// ValidationFn is one check over a draft.
type ValidationFn func(d Draft) []apperr.FieldError

// Validate runs the given validations against d.
func Validate(d Draft, validations ...ValidationFn) []apperr.FieldError {
	var all []apperr.FieldError
	for _, v := range validations {
		all = append(all, v(d)...)
	}
	return all
}

// ValidatePresence fails when the field is empty or blank.
func ValidatePresence(f Field) ValidationFn {
	return func(d Draft) []apperr.FieldError {
		if d.Get(f.Name) == "" {
			return []apperr.FieldError{{Field: f.Name, Message: f.Label + " is a required field"}}
		}
		return nil
	}
}
