// Package clientip resolves the originating client address of an
// *http.Request so the session layer can bind a session to the network it
// was created from.
//
// Forwarding headers are examined in descending priority until the first
// valid address is found:
//
//  1. CF-Connecting-IP
//  2. DO-Connecting-IP
//  3. X-Forwarded-For (first valid entry)
//  4. X-Real-IP
//  5. RemoteAddr
//
// A Resolver only honours the forwarding headers when the TCP peer belongs
// to one of its trusted proxy networks; otherwise RemoteAddr is used. A
// Resolver built without networks ignores the headers entirely, and
// clientip.TrustAll opts into honouring them from every peer. The package-level GetIP trusts the headers
// unconditionally and is meant for deployments where every request passes
// through a platform proxy.
//
// # Usage
//
//	resolver, err := clientip.New("10.0.0.0/8", "127.0.0.1")
//	if err != nil {
//	    return err
//	}
//	r.Use(resolver.Middleware)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    ip := clientip.GetIPFromContext(r.Context())
//	}
package clientip
