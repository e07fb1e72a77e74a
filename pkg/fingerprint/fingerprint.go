package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/sessionguard/pkg/clientip"
)

// Size is the length of a fingerprint in hex characters.
const Size = sha256.Size * 2

// Generate returns the hex sha256 of the user agent combined with the
// subnet of ip.
func Generate(userAgent, ip string) string {
	hash := sha256.Sum256([]byte(userAgent + "|" + Subnet(ip)))
	return hex.EncodeToString(hash[:])
}

// FromRequest generates the fingerprint for r from the IP resolved by the
// clientip middleware, or the TCP peer when none was resolved.
func FromRequest(r *http.Request) string {
	ip, ok := clientip.Lookup(r.Context())
	if !ok {
		ip = clientip.RemoteIP(r)
	}
	return Generate(r.UserAgent(), ip)
}

// Subnet returns the network portion of ip used for fingerprinting: the
// first three octets of an IPv4 address or the /48 prefix of an IPv6
// address. Input that does not parse is returned trimmed.
func Subnet(ip string) string {
	ip = strings.TrimSpace(ip)
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ip
	}

	if v4 := parsed.To4(); v4 != nil {
		return strconv.Itoa(int(v4[0])) + "." + strconv.Itoa(int(v4[1])) + "." + strconv.Itoa(int(v4[2]))
	}

	return parsed.Mask(net.CIDRMask(48, 128)).String()
}
