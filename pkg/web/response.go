// Package web defines common components for a web application.
package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into json friendly response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a human readable suffix for the failed validation rule.
//
// It is meant to be appended to the field name, e.g. "Type" + " must be one of ...".
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "uuid", "uuid4":
		return " must be a valid UUID"
	case "oneof":
		return " must be one of: " + fe.Param()
	}

	return " is invalid"
}

// ErrMalformedRequest is reported when the request cannot be decoded at all.
var ErrMalformedRequest = errors.New("malformed request")

// BindErrorMsg renders a binding error as a message for the client.
//
// Only the first failed field is reported.
func BindErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		field := ve[0]
		return field.Field() + GetErrorMsg(field)
	}

	return ErrMalformedRequest.Error()
}
