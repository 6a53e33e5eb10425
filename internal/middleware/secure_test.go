package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureHeaders_API(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	SecureHeaders(SecureHeadersConfig{IsDevelopment: true})(&captureHandler{}).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))

	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-referrer", rr.Header().Get("Referrer-Policy"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestSecureHeaders_DocsGetRelaxedPolicy(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	SecureHeaders(SecureHeadersConfig{IsDevelopment: true})(&captureHandler{}).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api-docs/index.html", nil))

	csp := rr.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self' 'unsafe-inline'")
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestSecureHeaders_HSTSOnlyOverTLSOutsideDevelopment(t *testing.T) {
	t.Parallel()

	prod := SecureHeaders(SecureHeadersConfig{STSSeconds: 60})(&captureHandler{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "https://jobs.example/api/v1/jobs", nil)
	prod.ServeHTTP(rr, req)
	assert.Equal(t, "max-age=60; includeSubDomains", rr.Header().Get("Strict-Transport-Security"))

	dev := SecureHeaders(SecureHeadersConfig{IsDevelopment: true, STSSeconds: 60})(&captureHandler{})
	rr = httptest.NewRecorder()
	dev.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "https://jobs.example/api/v1/jobs", nil))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
}

// ============================================================================
// Sanitize Tests
// ============================================================================

// echoBody returns a handler that records what it was sent
func echoBody(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*got = string(b)
	})
}

func sanitizeRequest(contentType, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestSanitize_StripsMarkupFromStrings(t *testing.T) {
	t.Parallel()

	var got string
	Sanitize()(echoBody(&got)).ServeHTTP(httptest.NewRecorder(),
		sanitizeRequest("application/json", `{"title":"<script>alert(1)</script>Engineer","company":"<b>Acme</b>","tags":["<i>go</i>"]}`))

	assert.JSONEq(t, `{"title":"Engineer","company":"Acme","tags":["go"]}`, got)
}

func TestSanitize_StripsEscapedMarkup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"lower case escapes", `{"title":"\u003cscript\u003ealert(1)\u003c/script\u003eEngineer","company":"Acme"}`},
		{"upper case escapes", `{"title":"\u003Cb\u003EEngineer\u003C/b\u003E","company":"Acme"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got string
			Sanitize()(echoBody(&got)).ServeHTTP(httptest.NewRecorder(), sanitizeRequest("application/json", tt.body))

			assert.JSONEq(t, `{"title":"Engineer","company":"Acme"}`, got)
		})
	}
}

func TestSanitize_LeavesPlainTextAlone(t *testing.T) {
	t.Parallel()

	body := `{"title":"Engineer","company":"AT&T","count":10}`
	var got string
	Sanitize()(echoBody(&got)).ServeHTTP(httptest.NewRecorder(), sanitizeRequest("application/json", body))

	assert.Equal(t, body, got)
}

func TestSanitize_SkipsPasswords(t *testing.T) {
	t.Parallel()

	var got string
	Sanitize()(echoBody(&got)).ServeHTTP(httptest.NewRecorder(),
		sanitizeRequest("application/json", `{"name":"<b>Ann</b>","password":"p<a>ss>word"}`))

	assert.JSONEq(t, `{"name":"Ann","password":"p<a>ss>word"}`, got)
}

func TestSanitize_PreservesNumbers(t *testing.T) {
	t.Parallel()

	var got string
	Sanitize()(echoBody(&got)).ServeHTTP(httptest.NewRecorder(),
		sanitizeRequest("application/json", `{"title":"<b>x</b>","big":12345678901234567890}`))

	assert.JSONEq(t, `{"title":"x","big":12345678901234567890}`, got)
}

func TestSanitize_PassesThroughUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"not json", "text/plain", "<b>hello</b>"},
		{"invalid json", "application/json", `{"title":"<b>x</b>"`},
		{"trailing data", "application/json", `{"title":"<b>x</b>"} {}`},
	}

	for _, tt := range tests {
		var got string
		Sanitize()(echoBody(&got)).ServeHTTP(httptest.NewRecorder(), sanitizeRequest(tt.contentType, tt.body))
		assert.Equal(t, tt.body, got, tt.name)
	}
}

func TestSanitize_OversizedBody_PassesThroughWhole(t *testing.T) {
	t.Parallel()

	body := `{"title":"<b>` + strings.Repeat("x", maxSanitizeBytes) + `</b>"}`
	var got string
	Sanitize()(echoBody(&got)).ServeHTTP(httptest.NewRecorder(), sanitizeRequest("application/json", body))

	require.Len(t, got, len(body))
	assert.Equal(t, body, got)
}
