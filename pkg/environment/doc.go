// Package environment names the deployment environments the service knows
// about and normalizes the short aliases operators tend to use.
package environment
