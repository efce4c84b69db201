package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

type formErrors map[string]string

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type registerForm struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	FullName string `validate:"max=100"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"eqfield=Password"`
}

type profileForm struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	FullName string `validate:"max=100"`
	Bio      string `validate:"max=500"`
	Avatar   string `validate:"omitempty,url"`
}

type passwordForm struct {
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"eqfield=Password"`
}

var fieldLabels = map[string]string{
	"Username": "Username",
	"Email":    "Email",
	"FullName": "Full name",
	"Password": "Password",
	"Confirm":  "Password confirmation",
	"Bio":      "Bio",
	"Avatar":   "Avatar URL",
}

// describe turns validator failures into one message per field.
func describe(err error) formErrors {
	out := formErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["general"] = "Invalid form submission"
		return out
	}
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		var msg string
		switch fe.Tag() {
		case "required":
			msg = label + " is required"
		case "email":
			msg = "Email is invalid"
		case "url":
			msg = label + " must be a URL"
		case "min":
			msg = label + " must be at least " + fe.Param() + " characters"
		case "max":
			msg = label + " must be at most " + fe.Param() + " characters"
		case "eqfield":
			msg = "Passwords do not match"
		default:
			msg = label + " is invalid"
		}
		out[strings.ToLower(fe.Field())] = msg
	}
	return out
}
