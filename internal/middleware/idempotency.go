package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/forgo/jobs/api/internal/model"
)

// IdempotencyStore stores idempotency key results
type IdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*idempotencyEntry
	ttl      time.Duration
	now      func() time.Time
	stopChan chan struct{}
	stopOnce sync.Once
}

type idempotencyEntry struct {
	fingerprint string
	status      int
	headers     http.Header
	body        []byte
	expiresAt   time.Time
	inFlight    bool
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep idempotency results (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a new idempotency store
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup <= 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		entries:  make(map[string]*idempotencyEntry),
		ttl:      cfg.TTL,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	go store.cleanupLoop(cfg.Cleanup)

	return store
}

// Stop stops the cleanup goroutine
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *IdempotencyStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if !entry.inFlight && entry.expiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
}

// storeKey scopes a client key to the caller and route
func storeKey(userID, idempotencyKey, method, path string) string {
	h := sha256.New()
	for _, part := range []string{userID, idempotencyKey, method, path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// replayedHeaders are the response headers kept with a stored result. The
// rest belong to the outer middleware of the request being answered.
var replayedHeaders = []string{"Content-Type", "Location"}

func replay(w http.ResponseWriter, entry *idempotencyEntry) {
	for k, v := range entry.headers {
		w.Header()[k] = v
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

// Idempotency returns middleware that replays the stored response when a
// POST or PATCH is retried with the same Idempotency-Key. A retry while the
// first request is still running gets 409; reusing a key with a different
// body gets 400. Server errors are not stored.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(idempotencyKey) > 255 {
				model.NewBadRequestError("Idempotency-Key must be at most 255 characters").WriteJSON(w)
				return
			}

			userID := GetUserID(r.Context())
			if userID == "" {
				userID = GetClientIP(r)
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				model.NewBadRequestError("Invalid request body").WriteJSON(w)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := storeKey(userID, idempotencyKey, r.Method, r.URL.Path)
			sum := fingerprint(body)

			store.mu.Lock()
			if existing, exists := store.entries[key]; exists && (existing.inFlight || existing.expiresAt.After(store.now())) {
				snapshot := *existing
				store.mu.Unlock()

				switch {
				case snapshot.fingerprint != sum:
					model.NewBadRequestError("Idempotency-Key was already used with a different request").WriteJSON(w)
				case snapshot.inFlight:
					model.NewConflictError("A request with this Idempotency-Key is still being processed").WriteJSON(w)
				default:
					replay(w, &snapshot)
				}
				return
			}

			entry := &idempotencyEntry{fingerprint: sum, inFlight: true}
			store.entries[key] = entry
			store.mu.Unlock()

			irw := &idempotencyResponseWriter{ResponseWriter: w, status: http.StatusOK}
			completed := false

			defer func() {
				store.mu.Lock()
				defer store.mu.Unlock()

				if !completed || irw.status >= http.StatusInternalServerError {
					delete(store.entries, key)
					return
				}
				entry.status = irw.status
				entry.headers = make(http.Header, len(replayedHeaders))
				for _, name := range replayedHeaders {
					if v := irw.Header().Values(name); len(v) > 0 {
						entry.headers[name] = append([]string(nil), v...)
					}
				}
				entry.body = irw.body.Bytes()
				entry.expiresAt = store.now().Add(store.ttl)
				entry.inFlight = false
			}()

			next.ServeHTTP(irw, r)
			completed = true
		})
	}
}
