package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyMiddleware enforces Idempotency-Key usage for unsafe methods
// so a double-submitted money movement runs at most once.
type IdempotencyMiddleware struct {
	cache *redis.Client
	ttl   time.Duration
}

func NewIdempotencyMiddleware(cache *redis.Client, ttl time.Duration) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{
		cache: cache,
		ttl:   ttl,
	}
}

// Require blocks duplicate POST/PUT/PATCH/DELETE requests with the same
// Idempotency-Key header, replaying the first response to later callers.
func (m *IdempotencyMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut &&
			r.Method != http.MethodPatch && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			jsonError(w, http.StatusBadRequest, "Idempotency-Key header required")
			return
		}

		dataKey := fmt.Sprintf("idempotency:data:%s:%s", r.Method, key)
		lockKey := fmt.Sprintf("idempotency:lock:%s:%s", r.Method, key)

		if handled := m.replayCached(w, r, dataKey); handled {
			return
		}

		ok, err := m.cache.SetNX(r.Context(), lockKey, "1", m.ttl).Result()
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !ok {
			// Another request with the same key is in flight; wait for
			// its response to land instead of failing double-clicks.
			for i := 0; i < 50; i++ {
				time.Sleep(100 * time.Millisecond)
				if handled := m.replayCached(w, r, dataKey); handled {
					return
				}
			}
			jsonError(w, http.StatusConflict, "Duplicate request")
			return
		}
		defer m.cache.Del(r.Context(), lockKey)

		cw := newCaptureWriter(w, 1<<20)
		next.ServeHTTP(cw, r)

		_ = m.cacheResponse(r, dataKey, cw)
	})
}

type capturedResponse struct {
	Status  int               `json:"status"`
	Body    []byte            `json:"body"`
	Headers map[string]string `json:"headers"`
}

func (m *IdempotencyMiddleware) replayCached(w http.ResponseWriter, r *http.Request, dataKey string) bool {
	payload, err := m.cache.Get(r.Context(), dataKey).Bytes()
	if err != nil {
		return false
	}

	var cr capturedResponse
	if err := json.Unmarshal(payload, &cr); err != nil {
		return false
	}

	for k, v := range cr.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(cr.Status)
	_, _ = w.Write(cr.Body)
	return true
}

func (m *IdempotencyMiddleware) cacheResponse(r *http.Request, dataKey string, cw *captureWriter) error {
	if cw.status == 0 || len(cw.buf) == 0 {
		return nil
	}

	resp := capturedResponse{
		Status:  cw.status,
		Body:    cw.buf,
		Headers: cw.headers,
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return m.cache.Set(r.Context(), dataKey, payload, m.ttl).Err()
}

// captureWriter tees the response so it can be replayed for duplicates.
type captureWriter struct {
	http.ResponseWriter
	buf     []byte
	limit   int
	status  int
	headers map[string]string
}

func newCaptureWriter(w http.ResponseWriter, limit int) *captureWriter {
	return &captureWriter{
		ResponseWriter: w,
		buf:            make([]byte, 0, 1024),
		limit:          limit,
		headers:        make(map[string]string),
	}
}

func (w *captureWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	for k, v := range w.ResponseWriter.Header() {
		if len(v) > 0 {
			w.headers[k] = v[0]
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *captureWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	if space := w.limit - len(w.buf); space > 0 {
		toCopy := len(p)
		if toCopy > space {
			toCopy = space
		}
		w.buf = append(w.buf, p[:toCopy]...)
	}
	return w.ResponseWriter.Write(p)
}
