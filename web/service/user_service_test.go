package service

import (
	"testing"

	"quill/database/model"

	"github.com/stretchr/testify/assert"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	user, err := userService.Register("alice@example.com", "alice", "s3cret-pw")
	assert.NoError(t, err)
	assert.Equal(t, model.RoleStandardUser, user.Role)
	assert.NotEqual(t, "s3cret-pw", user.PasswordHash)

	// Correct credentials succeed
	got, err := userService.Authenticate("alice@example.com", "s3cret-pw", "")
	assert.NoError(t, err)
	assert.Equal(t, user.Id, got.Id)

	// A single changed character fails
	_, err = userService.Authenticate("alice@example.com", "s3cret-pW", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email fails with the same error as a wrong password
	_, err = userService.Authenticate("nobody@example.com", "s3cret-pw", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	_, err := userService.Register("bob@example.com", "bob-original", "password1")
	assert.NoError(t, err)

	// Same email, different username
	_, err = userService.Register("bob@example.com", "bob-two", "password2")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	// Same username, different email
	_, err = userService.Register("bob2@example.com", "bob-original", "password3")
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	// The original account still authenticates with its original password
	got, err := userService.Authenticate("bob@example.com", "password1", "")
	assert.NoError(t, err)
	assert.Equal(t, "bob-original", got.Username)
}

func TestIdenticalPasswordsGetDistinctHashes(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	u1, err := userService.Register("carol@example.com", "carol", "same-password")
	assert.NoError(t, err)
	u2, err := userService.Register("dave@example.com", "dave", "same-password")
	assert.NoError(t, err)

	assert.NotEqual(t, u1.PasswordHash, u2.PasswordHash)
}

func TestSetRole(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	user, err := userService.Register("erin@example.com", "erin", "password1")
	assert.NoError(t, err)

	err = userService.SetRole("erin@example.com", model.RoleEditor)
	assert.NoError(t, err)

	got, err := userService.GetUser(user.Id)
	assert.NoError(t, err)
	assert.Equal(t, model.RoleEditor, got.Role)

	// Unknown role is rejected and leaves the account untouched
	err = userService.SetRole("erin@example.com", "superuser")
	assert.ErrorIs(t, err, ErrUnknownRole)
	got, _ = userService.GetUser(user.Id)
	assert.Equal(t, model.RoleEditor, got.Role)

	// Unknown account
	err = userService.SetRole("ghost@example.com", model.RoleEditor)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDefaultAdminSeededOnce(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	admin, err := userService.GetUserByEmail("admin@example.com")
	assert.NoError(t, err)
	assert.Equal(t, model.RoleAdministrator, admin.Role)

	_, err = userService.Authenticate("admin@example.com", "admin", "")
	assert.NoError(t, err)
}

func TestUpdatePassword(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	user, err := userService.Register("frank@example.com", "frank", "old-password")
	assert.NoError(t, err)

	err = userService.UpdatePassword(user.Id, "new-password")
	assert.NoError(t, err)

	_, err = userService.Authenticate("frank@example.com", "old-password", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = userService.Authenticate("frank@example.com", "new-password", "")
	assert.NoError(t, err)
}
