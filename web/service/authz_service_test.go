package service

import (
	"testing"

	"quill/database/model"

	"github.com/stretchr/testify/assert"
)

func TestCheckAnonymousIsUnauthenticated(t *testing.T) {
	setup()
	defer teardown()

	authz := NewAuthzService()

	// Anonymous is never Forbidden, even for permissions nobody holds
	assert.Equal(t, Unauthenticated, authz.Check(nil, model.PermCreatePost))
	assert.Equal(t, Unauthenticated, authz.Check(nil, model.PermDeleteComment))
	assert.Equal(t, Unauthenticated, authz.Check(nil))
}

func TestCheckGrantsIffSuperset(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	authz := NewAuthzService()

	user, err := userService.Register("reader@example.com", "reader", "password1")
	assert.NoError(t, err)

	// Standard user: comments yes, posts no
	assert.Equal(t, Granted, authz.Check(user, model.PermPostComment))
	assert.Equal(t, Granted, authz.Check(user, model.PermViewComment, model.PermPostComment))
	assert.Equal(t, Forbidden, authz.Check(user, model.PermCreatePost))
	// One missing permission fails the whole set
	assert.Equal(t, Forbidden, authz.Check(user, model.PermPostComment, model.PermCreatePost))

	// Administrator covers everything
	assert.NoError(t, userService.SetRole("reader@example.com", model.RoleAdministrator))
	user, err = userService.GetUser(user.Id)
	assert.NoError(t, err)
	assert.Equal(t, Granted, authz.Check(user,
		model.PermCreatePost, model.PermEditPost, model.PermDeletePost,
		model.PermViewComment, model.PermPostComment, model.PermDeleteComment))
}

func TestCheckSeesRoleFlagChangesImmediately(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	roleService := RoleService{}
	authz := NewAuthzService()

	user, err := userService.Register("writer@example.com", "writer", "password1")
	assert.NoError(t, err)
	assert.Equal(t, Forbidden, authz.Check(user, model.PermCreatePost))

	// Flip the flag on the role itself; the same user value is granted on
	// the very next check because nothing is cached.
	role, err := roleService.GetRole(model.RoleStandardUser)
	assert.NoError(t, err)
	role.CanCreatePost = true
	assert.NoError(t, roleService.UpdateRole(role))

	assert.Equal(t, Granted, authz.Check(user, model.PermCreatePost))

	role.CanCreatePost = false
	assert.NoError(t, roleService.UpdateRole(role))
	assert.Equal(t, Forbidden, authz.Check(user, model.PermCreatePost))
}

func TestCheckUnresolvableRoleIsForbidden(t *testing.T) {
	setup()
	defer teardown()

	authz := NewAuthzService()

	user := &model.User{Id: 99, Email: "x@example.com", Username: "x", Role: "deleted role"}
	assert.Equal(t, Forbidden, authz.Check(user, model.PermPostComment))
}

func TestRoleDeletionRules(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	roleService := RoleService{}

	_, err := userService.Register("member@example.com", "member", "password1")
	assert.NoError(t, err)

	// Standard user is referenced by the fresh account
	err = roleService.DeleteRole(model.RoleStandardUser)
	assert.ErrorIs(t, err, ErrRoleInUse)

	// Editor has no members yet
	err = roleService.DeleteRole(model.RoleEditor)
	assert.NoError(t, err)

	err = roleService.DeleteRole("never existed")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestPermissionSetHasAll(t *testing.T) {
	set := model.PermissionSet{
		model.PermViewComment: true,
		model.PermPostComment: true,
	}

	assert.True(t, set.HasAll())
	assert.True(t, set.HasAll(model.PermViewComment))
	assert.True(t, set.HasAll(model.PermViewComment, model.PermPostComment))
	assert.False(t, set.HasAll(model.PermViewComment, model.PermDeleteComment))
	assert.False(t, set.HasAll(model.PermCreatePost))
}
