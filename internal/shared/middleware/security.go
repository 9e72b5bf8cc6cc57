package middleware

import (
	"net"
	"net/http"
	"strings"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// HSTS tells browsers to reach the API over HTTPS only, for one year.
func HSTS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", hstsValue)
		next.ServeHTTP(w, r)
	})
}

// IsHostAllowed reports whether the redirect server may send a client to
// host. An empty list allows every host.
func IsHostAllowed(host string, allowedHosts []string) bool {
	if len(allowedHosts) == 0 {
		return true
	}
	for _, allowed := range allowedHosts {
		if hostMatches(host, allowed) {
			return true
		}
	}
	return false
}

// hostMatches compares two host[:port] values case-insensitively. A side
// without a port matches any port.
func hostMatches(host, allowed string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	allowed = strings.ToLower(strings.TrimSpace(allowed))
	if host == "" || allowed == "" {
		return false
	}
	return host == allowed || hostname(host) == hostname(allowed)
}

// hostname strips the port and IPv6 brackets.
func hostname(h string) string {
	if name, _, err := net.SplitHostPort(h); err == nil {
		return name
	}
	return strings.TrimSuffix(strings.TrimPrefix(h, "["), "]")
}
