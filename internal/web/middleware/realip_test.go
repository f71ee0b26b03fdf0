package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		realIP     string
		forwarded  string
		wantAddr   string
	}{
		{
			name:       "trusted proxy with X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4711",
			realIP:     "203.0.113.9",
			wantAddr:   "203.0.113.9",
		},
		{
			name:       "trusted proxy with X-Forwarded-For chain",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4711",
			forwarded:  "203.0.113.9, 10.1.2.3",
			wantAddr:   "203.0.113.9",
		},
		{
			name:       "untrusted client keeps socket address",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "198.51.100.7:999",
			realIP:     "203.0.113.9",
			wantAddr:   "198.51.100.7:999",
		},
		{
			name:       "single IP trust entry",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:8080",
			realIP:     "203.0.113.9",
			wantAddr:   "203.0.113.9",
		},
		{
			name:       "no proxies configured",
			remoteAddr: "198.51.100.7:999",
			realIP:     "203.0.113.9",
			wantAddr:   "198.51.100.7:999",
		},
		{
			name:       "invalid header value ignored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4711",
			realIP:     "not-an-ip",
			wantAddr:   "10.1.2.3:4711",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			handler := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.wantAddr {
				t.Errorf("expected RemoteAddr %q, got %q", tt.wantAddr, got)
			}
		})
	}
}
