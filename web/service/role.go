package service

import (
	"quill/database"
	"quill/database/model"
)

// RoleService is the role registry: a read-mostly catalog of named roles
// and their permission flags, loaded fresh from the database on every
// lookup so flag edits apply to in-flight sessions.
type RoleService struct{}

// GetRole returns the role with the given name.
func (s *RoleService) GetRole(name string) (*model.Role, error) {
	db := database.GetDB()

	role := &model.Role{}
	err := db.Model(model.Role{}).
		Where("name = ?", name).
		First(role).
		Error
	if database.IsNotFound(err) {
		return nil, ErrUnknownRole
	} else if err != nil {
		return nil, err
	}
	return role, nil
}

// PermissionsFor resolves a role name to its permission set.
func (s *RoleService) PermissionsFor(name string) (model.PermissionSet, error) {
	role, err := s.GetRole(name)
	if err != nil {
		return nil, err
	}
	return role.Permissions(), nil
}

// AllRoles lists the role catalog.
func (s *RoleService) AllRoles() ([]model.Role, error) {
	db := database.GetDB()

	roles := make([]model.Role, 0)
	err := db.Model(model.Role{}).Order("id").Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// UpdateRole saves edited permission flags for an existing role.
func (s *RoleService) UpdateRole(role *model.Role) error {
	db := database.GetDB()
	return db.Save(role).Error
}

// DeleteRole removes a role from the catalog. Deletion is rejected while
// any user still references the role.
func (s *RoleService) DeleteRole(name string) error {
	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).Where("role = ?", name).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrRoleInUse
	}

	result := db.Where("name = ?", name).Delete(model.Role{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUnknownRole
	}
	return nil
}
