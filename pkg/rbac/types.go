package rbac

// MaxInheritanceDepth bounds how deep role inheritance may nest.
const MaxInheritanceDepth = 10

// Role is a named set of permissions that may inherit other roles.
type Role struct {
	Permissions []string `yaml:"permissions"`
	Inherits    []string `yaml:"inherits"`
}

// Subject is anything that can be authorized: it has a role and may carry
// permissions granted directly, on top of what the role grants.
type Subject interface {
	SubjectRole() string
	SubjectPermissions() []string
}

// Requirement describes what a request needs. Empty fields are not checked.
// Roles: the subject's role must be one of them.
// Permissions: the subject must hold at least one of them.
type Requirement struct {
	Roles       []string
	Permissions []string
}
