package environment

import "strings"

// Environment represents application environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Staging     Environment = "staging"
)

// Parse maps env (case-insensitive, "prod"/"stage"/"dev" aliases accepted)
// to a known Environment. Unknown values resolve to Development.
func Parse(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

// IsProduction reports whether e is Production.
func (e Environment) IsProduction() bool {
	return e == Production
}
