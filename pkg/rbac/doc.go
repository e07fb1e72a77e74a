// Package rbac evaluates role and permission requirements for an
// authenticated subject.
//
// Roles map to permission scopes and may inherit other roles. A Policy is
// built once from a RoleSource and then answers every authorization question
// through a single function, Evaluate. The middleware helpers are thin
// wrappers over it.
//
//	src, err := rbac.NewYAMLSourceFromFile("roles.yaml")
//	policy, err := rbac.NewPolicy(ctx, src)
//
//	r.With(policy.RequireRoles("admin")).Delete("/users/{id}", h)
//	r.With(policy.RequirePermissions("invoices.read")).Get("/invoices", h)
//
// Permissions follow pkg/scopes: "invoices.*" grants "invoices.read",
// "*" grants everything.
package rbac
