package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/vidtube-api/internal/apperror"
)

type signup struct {
	Username string `json:"username" validate:"required,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `form:"fullName" validate:"required,max=10"`
}

type passwordChange struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=2,nefield=OldPassword"`
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(signup{Username: "alice", Email: "a@x.com", Password: "pw", FullName: "Alice A"}))
}

func TestStruct_ReportsFirstViolationOnly(t *testing.T) {
	v := New()

	err := v.Struct(signup{Email: "not-an-email"})
	require.Error(t, err)

	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, "username is required", appErr.Message)
}

func TestStruct_Messages(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"email", signup{Username: "alice", Email: "nope", Password: "pw", FullName: "A"}, "email must be a valid email address"},
		{"alphanum", signup{Username: "al ice", Email: "a@x.com", Password: "pw", FullName: "A"}, "username must contain only letters and digits"},
		{"form tag name", signup{Username: "alice", Email: "a@x.com", Password: "pw"}, "fullName is required"},
		{"max", signup{Username: "alice", Email: "a@x.com", Password: "pw", FullName: "Alice Abernathy"}, "fullName must be at most 10 characters"},
		{"nefield", passwordChange{OldPassword: "same", NewPassword: "same"}, "newPassword must differ from oldPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.payload)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperror.From(err).Message)
		})
	}
}
