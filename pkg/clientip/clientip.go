package clientip

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrInvalidProxy is returned by New when a trusted proxy entry is neither
// an IP address nor a CIDR block.
var ErrInvalidProxy = errors.New("clientip.invalid_proxy")

var forwardingHeaders = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// TrustAll, passed to New, honours forwarding headers from any peer.
const TrustAll = "*"

// Resolver extracts client addresses, restricting which peers are allowed
// to supply forwarding headers.
type Resolver struct {
	trusted  []*net.IPNet
	trustAll bool
}

// New builds a Resolver. Each entry is a CIDR block, a single address or
// TrustAll. With no entries forwarding headers are ignored and the TCP peer
// address is used.
func New(trustedProxies ...string) (*Resolver, error) {
	res := &Resolver{}
	nets := make([]*net.IPNet, 0, len(trustedProxies))
	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == TrustAll {
			res.trustAll = true
			continue
		}
		if _, ipnet, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, ipnet)
			continue
		}
		ip := net.ParseIP(entry)
		if ip == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, entry)
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	res.trusted = nets
	return res, nil
}

var defaultResolver = &Resolver{trustAll: true}

// GetIP returns the client's IP address using the default Resolver, which
// trusts forwarding headers from any peer.
func GetIP(r *http.Request) string {
	return defaultResolver.IP(r)
}

// IP returns the client's IP address for r, or an empty string when no
// valid address can be found.
func (res *Resolver) IP(r *http.Request) string {
	peer := peerIP(r.RemoteAddr)

	if res.trusts(peer) {
		for _, header := range forwardingHeaders {
			value := r.Header.Get(header)
			if value == "" {
				continue
			}
			// X-Forwarded-For carries a chain; the first valid entry is the client.
			for candidate := range strings.SplitSeq(value, ",") {
				if parsed := parseIP(candidate); parsed != "" {
					return parsed
				}
			}
		}
	}

	return peer
}

// RemoteIP returns the TCP peer address of r, ignoring forwarding headers.
func RemoteIP(r *http.Request) string {
	return peerIP(r.RemoteAddr)
}

func (res *Resolver) trusts(peer string) bool {
	if res.trustAll {
		return true
	}
	ip := net.ParseIP(peer)
	if ip == nil {
		return false
	}
	for _, n := range res.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func peerIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return parseIP(remoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes an IP address string.
// Returns empty string if the IP is invalid.
func parseIP(ipStr string) string {
	ipStr = strings.TrimSpace(ipStr)
	if ipStr == "" {
		return ""
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	return ip.String()
}
