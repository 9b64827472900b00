package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the first address in X-Forwarded-For, falling back to
// the host part of the connection's remote address.
//
// X-Forwarded-For is trusted as sent. Any client can set it, so a client
// that rotates the header value gets a fresh window each time.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
