package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"hrpay/internal/platform/logger"
	"hrpay/internal/transport/http/api"
)

var (
	ErrIdempotencyConflict   = errors.New("idempotency key conflicts with existing request")
	ErrIdempotencyInProgress = errors.New("request with this idempotency key is still in progress")
)

type storedResponse struct {
	requestHash string
	pending     bool
	status      int
	header      http.Header
	body        []byte
	expires     time.Time
}

// IdempotencyStore remembers responses to keyed mutations for ttl. A key is
// reserved while its first request runs.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]storedResponse
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{ttl: ttl, now: time.Now, entries: map[string]storedResponse{}}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// check returns the stored response for key, or reserves key for the caller
// when there is none. found is false exactly when the caller holds the
// reservation and must either save or release it.
func (s *IdempotencyStore) check(key, requestHash string) (storedResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	entry, ok := s.entries[key]
	if ok && now.After(entry.expires) {
		delete(s.entries, key)
		ok = false
	}
	if !ok {
		s.entries[key] = storedResponse{requestHash: requestHash, pending: true, expires: now.Add(s.ttl)}
		return storedResponse{}, false, nil
	}
	if entry.requestHash != requestHash {
		return storedResponse{}, false, ErrIdempotencyConflict
	}
	if entry.pending {
		return storedResponse{}, false, ErrIdempotencyInProgress
	}
	return entry, true, nil
}

func (s *IdempotencyStore) save(key string, entry storedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	entry.pending = false
	entry.expires = now.Add(s.ttl)
	s.entries[key] = entry
}

// release drops a reservation whose request did not succeed.
func (s *IdempotencyStore) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok && entry.pending {
		delete(s.entries, key)
	}
}

func (s *IdempotencyStore) sweepLocked(now time.Time) {
	for key, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, key)
		}
	}
}

func (s *IdempotencyStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type capturingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *capturingWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *capturingWriter) Write(p []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key with the same body. Requests without the header pass through.
func Idempotency(store *IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if store == nil || key == "" || r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_body", "unable to read request body", GetRequestID(r.Context()))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))

			scoped := actorOrIPKey(r) + "|" + r.Method + " " + r.URL.Path + "|" + key
			hash := RequestHash(payload)
			stored, found, err := store.check(scoped, hash)
			switch {
			case errors.Is(err, ErrIdempotencyConflict):
				api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), GetRequestID(r.Context()))
				return
			case errors.Is(err, ErrIdempotencyInProgress):
				api.Fail(w, http.StatusConflict, "idempotency_in_progress", err.Error(), GetRequestID(r.Context()))
				return
			}
			if found {
				logger.Debug(r.Context(), "idempotent replay", zap.String("key", key))
				for name, values := range stored.header {
					for _, v := range values {
						w.Header().Add(name, v)
					}
				}
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.status)
				_, _ = w.Write(stored.body)
				return
			}

			saved := false
			defer func() {
				if !saved {
					store.release(scoped)
				}
			}()

			capture := &capturingWriter{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			if capture.status >= 200 && capture.status < 300 {
				store.save(scoped, storedResponse{
					requestHash: hash,
					status:      capture.status,
					header:      http.Header{"Content-Type": []string{w.Header().Get("Content-Type")}},
					body:        capture.body.Bytes(),
				})
				saved = true
			}
		})
	}
}
