package rbac

import "errors"

var (
	// ErrNoSubject is returned when there is no authenticated subject to evaluate.
	ErrNoSubject = errors.New("rbac.no_subject")

	// ErrRoleNotAllowed is returned when the subject's role is not among the required roles.
	ErrRoleNotAllowed = errors.New("rbac.role_not_allowed")

	// ErrInsufficientPermissions is returned when none of the required permissions are granted.
	ErrInsufficientPermissions = errors.New("rbac.insufficient_permissions")

	// ErrCircularInheritance is returned when roles inherit each other in a loop.
	ErrCircularInheritance = errors.New("rbac.circular_inheritance")

	// ErrUnknownRole is returned when a role inherits from a role that is not defined.
	ErrUnknownRole = errors.New("rbac.unknown_role")

	// ErrInvalidPolicyFile is returned when a role definition file cannot be parsed.
	ErrInvalidPolicyFile = errors.New("rbac.invalid_policy_file")
)
