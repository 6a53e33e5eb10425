package middleware

import (
	"net/http"
	"strings"

	"github.com/unrolled/secure"
)

const apiDocsPrefix = "/api-docs"

// SecureHeadersConfig controls the security headers sent with every response
type SecureHeadersConfig struct {
	// HSTS is only sent outside development
	IsDevelopment bool
	STSSeconds    int64
}

// SecureHeaders sets the usual hardening headers. The API gets a deny-all
// content security policy; the documentation UI needs its own scripts and
// styles so paths under /api-docs get a relaxed one.
func SecureHeaders(cfg SecureHeadersConfig) Middleware {
	if cfg.STSSeconds <= 0 {
		cfg.STSSeconds = 15552000
	}

	base := secure.Options{
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		ReferrerPolicy:       "no-referrer",
		STSSeconds:           cfg.STSSeconds,
		STSIncludeSubdomains: true,
		IsDevelopment:        cfg.IsDevelopment,
	}

	apiOpts := base
	apiOpts.ContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

	docsOpts := base
	docsOpts.ContentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"

	api := secure.New(apiOpts)
	docs := secure.New(docsOpts)

	return func(next http.Handler) http.Handler {
		apiHandler := api.Handler(next)
		docsHandler := docs.Handler(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, apiDocsPrefix) {
				docsHandler.ServeHTTP(w, r)
				return
			}
			apiHandler.ServeHTTP(w, r)
		})
	}
}
