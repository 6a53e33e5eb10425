package model

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
)

// fieldErrors flattens ozzo-validation output into sorted field errors.
func fieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: err.Error()}}
	}

	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]FieldError, 0, len(fields))
	for _, field := range fields {
		out = append(out, FieldError{Field: field, Message: verrs[field].Error()})
	}
	return out
}
