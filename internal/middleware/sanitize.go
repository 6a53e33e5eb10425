package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizeBytes matches the largest body handlers accept
const maxSanitizeBytes = 1 << 20

// Sanitize strips markup from string values in JSON request bodies.
// Values without angle brackets are left alone so text like "AT&T" is
// stored as sent. Password fields are never touched. Bodies that are not
// JSON, do not parse, or exceed the size limit pass through unchanged and
// the handler reports them.
func Sanitize() Middleware {
	policy := bluemonday.StrictPolicy()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(io.LimitReader(r.Body, maxSanitizeBytes+1))
			if err != nil {
				r.Body = io.NopCloser(bytes.NewReader(raw))
				next.ServeHTTP(w, r)
				return
			}
			if len(raw) > maxSanitizeBytes {
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
				next.ServeHTTP(w, r)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(sanitizeJSON(policy, raw)))
			r.ContentLength = -1
			next.ServeHTTP(w, r)
		})
	}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// escapedBrackets are the JSON escapes that decode to '<' or '>'
var escapedBrackets = [][]byte{[]byte(`\u003c`), []byte(`\u003e`)}

// mayContainMarkup reports whether any decoded string could hold an angle
// bracket, written literally or as a \u escape in either case.
func mayContainMarkup(raw []byte) bool {
	if bytes.ContainsAny(raw, "<>") {
		return true
	}
	lower := bytes.ToLower(raw)
	for _, esc := range escapedBrackets {
		if bytes.Contains(lower, esc) {
			return true
		}
	}
	return false
}

// sanitizeJSON returns raw unchanged when nothing needed cleaning
func sanitizeJSON(policy *bluemonday.Policy, raw []byte) []byte {
	if !mayContainMarkup(raw) {
		return raw
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	if _, err := dec.Token(); err != io.EOF {
		return raw
	}

	out, err := json.Marshal(sanitizeValue(policy, "", v))
	if err != nil {
		return raw
	}
	return out
}

func sanitizeValue(policy *bluemonday.Policy, key string, v any) any {
	switch val := v.(type) {
	case string:
		if strings.EqualFold(key, "password") || !strings.ContainsAny(val, "<>") {
			return val
		}
		return strings.TrimSpace(policy.Sanitize(val))
	case map[string]any:
		for k, child := range val {
			val[k] = sanitizeValue(policy, k, child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = sanitizeValue(policy, key, child)
		}
		return val
	default:
		return val
	}
}
