package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"landing/pkg/requestcontext"
)

type fakeValidator struct {
	subject string
	err     error
}

func (f fakeValidator) Validate(string) (string, error) { return f.subject, f.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRequireAdmin(t *testing.T) {
	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = requestcontext.AdminSubject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		h := RequireAdmin(fakeValidator{subject: "ops"}, discardLogger())(next)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		h := RequireAdmin(fakeValidator{err: errors.New("bad")}, discardLogger())(next)
		req := httptest.NewRequest(http.MethodPost, "/projects", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes subject through", func(t *testing.T) {
		h := RequireAdmin(fakeValidator{subject: "ops"}, discardLogger())(next)
		req := httptest.NewRequest(http.MethodPost, "/projects", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "ops", gotSubject)
	})
}

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "upstream-1", seen)
}

func TestClientIPFromRequest(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8"), netip.MustParsePrefix("::1/128")}

	tests := []struct {
		name    string
		remote  string
		xff     []string
		realIP  string
		trusted []netip.Prefix
		want    string
	}{
		{name: "peer only", remote: "198.51.100.4:5555", want: "198.51.100.4"},
		{name: "ipv6 peer", remote: "[2001:db8::7]:5555", want: "2001:db8::7"},
		{name: "headers ignored without trusted proxies", remote: "198.51.100.4:5555", xff: []string{"192.0.2.1"}, realIP: "203.0.113.9", want: "198.51.100.4"},
		{name: "headers ignored from untrusted peer", remote: "198.51.100.4:5555", xff: []string{"192.0.2.1"}, trusted: proxies, want: "198.51.100.4"},
		{name: "trusted peer single hop", remote: "10.1.2.3:80", xff: []string{"192.0.2.1"}, trusted: proxies, want: "192.0.2.1"},
		{name: "spoofed left entries are skipped", remote: "10.1.2.3:80", xff: []string{"6.6.6.6, 192.0.2.1, 10.0.0.9"}, trusted: proxies, want: "192.0.2.1"},
		{name: "repeated headers are joined", remote: "10.1.2.3:80", xff: []string{"6.6.6.6", "192.0.2.1"}, trusted: proxies, want: "192.0.2.1"},
		{name: "garbage hop stops the walk", remote: "10.1.2.3:80", xff: []string{"192.0.2.1, not-an-ip"}, trusted: proxies, want: "10.1.2.3"},
		{name: "all hops trusted yields leftmost", remote: "10.1.2.3:80", xff: []string{"10.0.0.2, 10.0.0.1"}, trusted: proxies, want: "10.0.0.2"},
		{name: "real ip from trusted peer", remote: "[::1]:80", realIP: "203.0.113.9", trusted: proxies, want: "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(req, tt.trusted))
		})
	}
}

func TestRecoveryWritesInternalError(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestDeviceLabel(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"empty", "", ""},
		{"mobile chrome", "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36", "mobile/Chrome"},
		{"desktop firefox", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", "desktop/Firefox"},
		{"crawler", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", "bot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeviceLabel(tt.ua))
		})
	}
}
