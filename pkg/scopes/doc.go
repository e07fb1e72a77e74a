// Package scopes matches dotted permission strings such as "accounts.read"
// against granted patterns, including the global wildcard "*" and namespace
// wildcards like "accounts.*".
//
//	granted := []string{"accounts.*", "documents.read"}
//	scopes.HasScope(granted, "accounts.write")      // true
//	scopes.HasAnyScopes(granted, []string{"x", "documents.read"}) // true
package scopes
