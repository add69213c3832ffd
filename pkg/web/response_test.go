package web

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestError(t *testing.T) {
	got := Error(errors.New("boom"))

	if got.Error != "boom" {
		t.Errorf(`Error(errors.New("boom")).Error = %q, want "boom"`, got.Error)
	}

	if got.Data != nil {
		t.Errorf("Error(err).Data = %v, want nil", got.Data)
	}
}

func TestGetErrorMsg(t *testing.T) {
	type request struct {
		ID   string `validate:"required,uuid"`
		Type string `validate:"required,oneof=DEPOSIT WITHDRAWAL"`
		Note string `validate:"max=1"`
	}

	testCases := []struct {
		name string
		req  request
		want string
	}{
		{
			name: "Required",
			req:  request{Type: "DEPOSIT"},
			want: "ID is required",
		},
		{
			name: "UUID",
			req:  request{ID: "not-a-uuid", Type: "DEPOSIT"},
			want: "ID must be a valid UUID",
		},
		{
			name: "OneOf",
			req:  request{ID: "0b9c2bd5-9ff2-4c43-9b5b-0d1d5d0d6a11", Type: "REFUND"},
			want: "Type must be one of: DEPOSIT WITHDRAWAL",
		},
		{
			name: "Default",
			req:  request{ID: "0b9c2bd5-9ff2-4c43-9b5b-0d1d5d0d6a11", Type: "DEPOSIT", Note: "too long"},
			want: "Note is invalid",
		},
	}

	v := validator.New()

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.req)

			var ve validator.ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("v.Struct(%+v) returned %v, want validator.ValidationErrors", tc.req, err)
			}

			field := ve[0]
			if got := field.Field() + GetErrorMsg(field); got != tc.want {
				t.Errorf("GetErrorMsg() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBindErrorMsg(t *testing.T) {
	type request struct {
		ID string `validate:"required,uuid"`
	}

	err := validator.New().Struct(request{ID: "nope"})
	if got, want := BindErrorMsg(err), "ID must be a valid UUID"; got != want {
		t.Errorf("BindErrorMsg(validation error) = %q, want %q", got, want)
	}

	if got, want := BindErrorMsg(errors.New("unexpected EOF")), ErrMalformedRequest.Error(); got != want {
		t.Errorf("BindErrorMsg(decode error) = %q, want %q", got, want)
	}
}
