package ratelimit_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/impawawa/Final-Project/internal/ratelimit"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{name: "first forwarded entry", forwarded: "9.9.9.9, 10.0.0.1", remoteAddr: "10.0.0.1:1234", want: "9.9.9.9"},
		{name: "single forwarded entry", forwarded: "8.8.8.8", remoteAddr: "10.0.0.1:1234", want: "8.8.8.8"},
		{name: "forwarded whitespace trimmed", forwarded: "  7.7.7.7 ,10.0.0.1", remoteAddr: "10.0.0.1:1234", want: "7.7.7.7"},
		{name: "empty first entry falls back", forwarded: " , 10.0.0.1", remoteAddr: "5.5.5.5:80", want: "5.5.5.5"},
		{name: "remote addr host", remoteAddr: "1.2.3.4:5678", want: "1.2.3.4"},
		{name: "ipv6 remote addr", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "remote addr without port", remoteAddr: "1.2.3.4", want: "1.2.3.4"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			require.Equal(t, tc.want, ratelimit.ClientIP(req))
		})
	}
}
