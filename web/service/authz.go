package service

import (
	"quill/database/model"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Granted means the identity's role covers every required permission.
	Granted Decision = iota
	// Unauthenticated means no identity was presented at all.
	Unauthenticated
	// Forbidden means an identity was presented but its role does not
	// satisfy the required permissions, or the role is unresolvable.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// AuthzService is the authorization gate. Check is a pure predicate over
// the presented identity and the role registry; nothing is cached between
// calls, so permission changes apply to the very next request.
type AuthzService struct {
	roleService RoleService
}

// NewAuthzService creates a gate bound to the role registry.
func NewAuthzService() *AuthzService {
	return new(AuthzService)
}

// Check resolves user → role → permission set and compares it against the
// required permissions. A nil user is Unauthenticated. A user whose role
// has been deleted or cannot be resolved is Forbidden, never granted.
func (s *AuthzService) Check(user *model.User, required ...model.Permission) Decision {
	if user == nil {
		return Unauthenticated
	}

	perms, err := s.roleService.PermissionsFor(user.Role)
	if err != nil {
		return Forbidden
	}

	if !perms.HasAll(required...) {
		return Forbidden
	}
	return Granted
}
