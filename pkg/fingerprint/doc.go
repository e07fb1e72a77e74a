// Package fingerprint derives a stable device identifier from a request's
// user agent and the subnet of its source address.
//
// Only the first three octets of an IPv4 address (or the /48 prefix of an
// IPv6 address) contribute to the hash, so a mobile client that is handed a
// new address inside the same carrier subnet keeps the same fingerprint,
// while a different browser or a different network produces a new one.
//
// Generate is a pure function returning a 64-character hex digest:
//
//	fp := fingerprint.Generate(r.UserAgent(), clientip.GetIPFromContext(r.Context()))
//
// Subnet exposes the network component on its own so callers can store it
// next to the user agent and tell which of the two changed.
package fingerprint
