// Package identity is the read side of the user directory that sessions are
// bound to, plus password verification for the login flow.
//
// The session layer never mutates identities; it only asks a Provider whether
// a user still exists and is active. Two providers ship here: MemoryProvider
// for tests and development, PostgresProvider over the users table created by
// pkg/pg migrations.
package identity
