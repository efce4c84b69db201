package admin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridpulse/console/internal/admin"
	"github.com/gridpulse/console/internal/gateway"
	"github.com/gridpulse/console/internal/shared"
)

func TestValidateReportsFirstMissingField(t *testing.T) {
	cases := []struct {
		name     string
		form     admin.Form
		creating bool
		want     string
	}{
		{"all empty", admin.Form{}, true, "Name is required"},
		{"email next", admin.Form{Name: "A"}, true, "Email is required"},
		{"password on create", admin.Form{Name: "A", Email: "a@example.com"}, true, "Password is required"},
		{"password skipped on edit", admin.Form{Name: "A", Email: "a@example.com"}, false, "Role is required"},
		{"role last", admin.Form{Name: "A", Email: "a@example.com", Password: "x"}, true, "Role is required"},
		{"email format", admin.Form{Name: "A", Email: "nope", Password: "x", Role: "Admin"}, true, "Email is invalid"},
		{"role outside form list", admin.Form{Name: "A", Email: "a@example.com", Password: "x", Role: "Super-Admin"}, true, "Role is invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.form.Validate(tc.creating)
			require.Error(t, err)
			assert.Equal(t, tc.want, shared.UserSafeMessage(err))
		})
	}

	ok := admin.Form{Name: "A", Email: "a@example.com", Role: "Analyst"}
	assert.NoError(t, ok.Validate(false))
}

func TestNormalizeKeepsPassword(t *testing.T) {
	f := admin.Form{Name: "  Ana ", Email: " ana@example.com ", Password: " secret ", Role: " Analyst"}.Normalize()
	assert.Equal(t, admin.Form{Name: "Ana", Email: "ana@example.com", Password: " secret ", Role: "Analyst"}, f)
}

func TestPayloadCopiesNameIntoUsernameAndFullName(t *testing.T) {
	p := admin.Form{Name: "Ana", Email: "ana@example.com", Role: "Analyst"}.Payload()
	assert.Equal(t, gateway.AdminInput{
		Username: "Ana",
		FullName: "Ana",
		Email:    "ana@example.com",
		Roles:    []string{"Analyst"},
	}, p)
}
