// internal/models/user_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndCheckPassword(t *testing.T) {
	user := &User{}
	require.NoError(t, user.SetPassword("admin123!@#"))

	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "admin123!@#", user.PasswordHash)

	assert.NoError(t, user.CheckPassword("admin123!@#"))
	assert.Error(t, user.CheckPassword("wrong-password"))
}

func TestCheckPasswordWithoutHash(t *testing.T) {
	user := &User{}
	assert.Error(t, user.CheckPassword("anything"))
}
