package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	UserType string `json:"userType" validate:"omitempty,oneof=customer business_owner"`
	Age      int    `json:"age" validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(signup{Email: "a@example.com", Password: "secret"}))

	err := ValidateStruct(signup{Email: "nope", Password: "abc", UserType: "admin", Age: -1})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"email must be a valid email address",
		"password must be at least 6 characters",
		"userType must be one of [customer business_owner]",
		"age must be 0 or more",
	}, verr.Problems)
}

func TestValidateStruct_Required(t *testing.T) {
	err := ValidateStruct(signup{})
	require.Error(t, err)
	assert.Equal(t, "email is required; password is required", err.Error())
}
