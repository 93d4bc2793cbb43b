package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractClientIP(t *testing.T) {
	d, err := NewDetector()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct", "203.0.113.9:1234", nil, "203.0.113.9"},
		{"untrusted proxy ignored", "203.0.113.9:1234", map[string]string{"X-Forwarded-For": "1.1.1.1"}, "203.0.113.9"},
		{"trusted xff", "10.0.0.2:80", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"}, "198.51.100.7"},
		{"trusted real ip", "127.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.8"}, "198.51.100.8"},
		{"garbage xff", "127.0.0.1:80", map[string]string{"X-Forwarded-For": "nope"}, "127.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
	if d.GetMetrics().InvalidIPAttempts != 1 {
		t.Errorf("expected one invalid forwarded address, got %+v", d.GetMetrics())
	}
}

func TestCustomTrustedProxies(t *testing.T) {
	if _, err := NewDetector("not-a-cidr"); err == nil {
		t.Fatal("expected error for invalid CIDR")
	}
	d, err := NewDetector("203.0.113.0/24")
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:80"
	r.Header.Set("X-Forwarded-For", "198.51.100.7")
	if got := d.ExtractClientIP(r); got != "127.0.0.1" {
		t.Fatalf("loopback is no longer trusted, got %q", got)
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d, _ := NewDetector()
	tests := []struct {
		method, target, agent string
		want                  bool
	}{
		{http.MethodGet, "/api/transactions?type=income", "Mozilla/5.0", false},
		{http.MethodGet, "/api/../../etc/passwd", "", true},
		{http.MethodGet, "/.git/config", "", true},
		{http.MethodGet, "/api/stats", "sqlmap/1.7", true},
		{"TRACE", "/api/stats", "", true},
	}
	var flagged int64
	for _, tt := range tests {
		if tt.want {
			flagged++
		}
		r := httptest.NewRequest(tt.method, tt.target, nil)
		r.Header.Set("User-Agent", tt.agent)
		if got := d.DetectSuspiciousRequest(r); got != tt.want {
			t.Errorf("%s %s (%s) = %v, want %v", tt.method, tt.target, tt.agent, got, tt.want)
		}
	}
	if got := d.GetMetrics().SuspiciousRequests; got != flagged {
		t.Errorf("SuspiciousRequests = %d, want %d", got, flagged)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing headers: %v", rec.Header())
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Strict-Transport-Security") != "max-age=31536000; includeSubDomains" {
		t.Fatalf("unexpected HSTS %q", rec.Header().Get("Strict-Transport-Security"))
	}
}
