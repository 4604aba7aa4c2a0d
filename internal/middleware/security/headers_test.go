package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHeadersApply(t *testing.T) {
	h := NewHeaders(DefaultHeadersConfig())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	h.Middleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
	if !strings.Contains(rr.Header().Get("Content-Security-Policy"), "https://unpkg.com") {
		t.Fatal("CSP must allow the htmx CDN")
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.Middleware(next).ServeHTTP(rr, req)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Fatalf("HSTS = %q", got)
	}
}

func TestHeadersSkipEmpty(t *testing.T) {
	h := NewHeaders(HeadersConfig{XFrameOptions: "SAMEORIGIN"})
	rr := httptest.NewRecorder()
	h.Apply(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, ok := rr.Header()["Content-Security-Policy"]; ok {
		t.Fatal("empty CSP should not be sent")
	}
	if rr.Header().Get("X-Frame-Options") != "SAMEORIGIN" {
		t.Fatal("configured header missing")
	}
}

func TestStaticAssetMiddleware(t *testing.T) {
	rr := httptest.NewRecorder()
	StaticAssetMiddleware(3600)(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x.css", nil))
	if got := rr.Header().Get("Cache-Control"); got != "public, max-age=3600, immutable" {
		t.Fatalf("Cache-Control = %q", got)
	}
}
