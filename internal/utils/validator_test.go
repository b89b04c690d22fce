// internal/utils/validator_test.go
package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCountryCode(t *testing.T) {
	type address struct {
		Country string `validate:"country_code"`
	}

	assert.NoError(t, ValidateStruct(address{Country: "US"}))
	assert.NoError(t, ValidateStruct(address{Country: "TW"}))
	assert.Error(t, ValidateStruct(address{Country: "usa"}))
	assert.Error(t, ValidateStruct(address{Country: "U"}))
	assert.Error(t, ValidateStruct(address{Country: "U1"}))
	assert.Error(t, ValidateStruct(address{Country: ""}))
}

func TestValidateSlug(t *testing.T) {
	type entity struct {
		Slug string `validate:"slug"`
	}

	// Empty passes so services can generate the slug from the name.
	assert.NoError(t, ValidateStruct(entity{Slug: ""}))
	assert.NoError(t, ValidateStruct(entity{Slug: "summer-2026"}))
	assert.NoError(t, ValidateStruct(entity{Slug: "lamp"}))
	assert.Error(t, ValidateStruct(entity{Slug: "Summer"}))
	assert.Error(t, ValidateStruct(entity{Slug: "-leading"}))
	assert.Error(t, ValidateStruct(entity{Slug: "trailing-"}))
	assert.Error(t, ValidateStruct(entity{Slug: "double--dash"}))
	assert.Error(t, ValidateStruct(entity{Slug: "with space"}))
}

func TestValidateStrongPassword(t *testing.T) {
	type credentials struct {
		Password string `validate:"strong_password"`
	}

	assert.NoError(t, ValidateStruct(credentials{Password: "Str0ng!pass"}))
	assert.Error(t, ValidateStruct(credentials{Password: "weakpass"}))
	assert.Error(t, ValidateStruct(credentials{Password: "NoSpecial1"}))
	assert.Error(t, ValidateStruct(credentials{Password: "no_upper1!"}))
	assert.Error(t, ValidateStruct(credentials{Password: "Ab1!xyz"}))
}

func TestValidateUsername(t *testing.T) {
	type account struct {
		Username string `validate:"username"`
	}

	assert.NoError(t, ValidateStruct(account{Username: "warehouse_ops"}))
	assert.NoError(t, ValidateStruct(account{Username: "admin2"}))
	assert.Error(t, ValidateStruct(account{Username: "ab"}))
	assert.Error(t, ValidateStruct(account{Username: "bad-name"}))
	assert.Error(t, ValidateStruct(account{Username: "spaced name"}))
}

func TestGetValidationErrors(t *testing.T) {
	type form struct {
		Email string `validate:"required,email"`
		Name  string `validate:"required"`
	}

	err := ValidateStruct(form{Email: "not-an-email"})
	require.Error(t, err)

	errs := GetValidationErrors(err)
	require.Len(t, errs, 2)

	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "email", errs[0].Tag)
	assert.Equal(t, "Invalid email format", errs[0].Message)

	assert.Equal(t, "name", errs[1].Field)
	assert.Equal(t, "required", errs[1].Tag)
	assert.Equal(t, "Name is required", errs[1].Message)
}

func TestGetValidationErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Empty(t, GetValidationErrors(errors.New("not a validation error")))
}
