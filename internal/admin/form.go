package admin

import (
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gridpulse/console/internal/gateway"
)

var validate = validator.New()

// ValidationError blocks a submission before any backend call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string       { return "admin: " + e.Message }
func (e *ValidationError) UserMessage() string { return e.Message }

// Form is the shared create/edit form.
type Form struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Normalize trims surrounding whitespace. Passwords are kept verbatim.
func (f Form) Normalize() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Role = strings.TrimSpace(f.Role)
	return f
}

// Validate returns the first problem in field order name, email, password
// (only when creating), role.
func (f Form) Validate(creating bool) error {
	switch {
	case f.Name == "":
		return &ValidationError{Message: "Name is required"}
	case f.Email == "":
		return &ValidationError{Message: "Email is required"}
	case creating && f.Password == "":
		return &ValidationError{Message: "Password is required"}
	case f.Role == "":
		return &ValidationError{Message: "Role is required"}
	}
	if err := validate.Var(f.Email, "email"); err != nil {
		return &ValidationError{Message: "Email is invalid"}
	}
	if !slices.Contains(FormRoles, f.Role) {
		return &ValidationError{Message: "Role is invalid"}
	}
	return nil
}

// Payload maps the form onto the backend shape. The name fills both
// username and full_name; an empty password is omitted.
func (f Form) Payload() gateway.AdminInput {
	return gateway.AdminInput{
		Username: f.Name,
		FullName: f.Name,
		Email:    f.Email,
		Password: f.Password,
		Roles:    []string{f.Role},
	}
}
