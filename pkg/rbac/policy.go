package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/dmitrymomot/sessionguard/pkg/scopes"
)

// RoleSource provides role definitions.
type RoleSource interface {
	Load(ctx context.Context) (map[string]Role, error)
}

// Policy answers authorization questions against a fixed role set.
// It is immutable after NewPolicy and safe for concurrent use.
type Policy struct {
	grants map[string][]string // role -> effective permissions, inheritance resolved
	logger *slog.Logger
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithLogger sets the logger used by the middleware to report denials.
func WithLogger(l *slog.Logger) PolicyOption {
	return func(p *Policy) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPolicy loads roles from source and resolves inheritance.
func NewPolicy(ctx context.Context, source RoleSource, opts ...PolicyOption) (*Policy, error) {
	roles, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}

	grants := make(map[string][]string, len(roles))
	for name := range roles {
		perms, err := resolve(name, roles, nil)
		if err != nil {
			return nil, err
		}
		grants[name] = scopes.NormalizeScopes(perms)
	}

	p := &Policy{
		grants: grants,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Roles returns the defined role names, sorted.
func (p *Policy) Roles() []string {
	names := make([]string, 0, len(p.grants))
	for name := range p.grants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasRole reports whether role is defined.
func (p *Policy) HasRole(role string) bool {
	_, ok := p.grants[role]
	return ok
}

// EffectivePermissions returns the subject's own permissions merged with
// everything its role grants. Undefined roles grant nothing.
func (p *Policy) EffectivePermissions(s Subject) []string {
	if s == nil {
		return nil
	}
	return scopes.NormalizeScopes(slices.Concat(s.SubjectPermissions(), p.grants[s.SubjectRole()]))
}

// Evaluate checks subject against req and returns nil when access is allowed.
// Both parts of a requirement must hold when both are given.
func (p *Policy) Evaluate(s Subject, req Requirement) error {
	if s == nil {
		return ErrNoSubject
	}

	if len(req.Roles) > 0 && !slices.Contains(req.Roles, s.SubjectRole()) {
		return ErrRoleNotAllowed
	}

	if len(req.Permissions) > 0 && !scopes.HasAnyScopes(p.EffectivePermissions(s), req.Permissions) {
		return ErrInsufficientPermissions
	}

	return nil
}

// resolve collects the permissions of name and every role it inherits.
// path holds the chain of roles currently being expanded.
func resolve(name string, roles map[string]Role, path []string) ([]string, error) {
	if slices.Contains(path, name) {
		return nil, errors.Join(ErrCircularInheritance,
			fmt.Errorf("role %q inherits itself via %v", name, path))
	}
	if len(path) > MaxInheritanceDepth {
		return nil, errors.Join(ErrCircularInheritance,
			fmt.Errorf("inheritance deeper than %d at role %q", MaxInheritanceDepth, name))
	}

	role, ok := roles[name]
	if !ok {
		return nil, errors.Join(ErrUnknownRole, fmt.Errorf("role %q is not defined", name))
	}

	perms := slices.Clone(role.Permissions)
	path = append(path, name)
	for _, parent := range role.Inherits {
		inherited, err := resolve(parent, roles, path)
		if err != nil {
			return nil, err
		}
		perms = append(perms, inherited...)
	}
	return perms, nil
}
