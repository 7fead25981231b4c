package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nomadhomes/bookingledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	defaultIdempotencyTTL = 24 * time.Hour
	// idempotencyFinalizeTimeout bounds the store write that settles a key.
	idempotencyFinalizeTimeout = 5 * time.Second
)

// storedResponse is what a completed request leaves behind for replays.
type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyMiddleware handles request idempotency using Redis.
type IdempotencyMiddleware struct {
	store  usecase.IdempotencyStore
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. A zero ttl
// keeps keys for 24 hours.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: logger}
}

// Wrap wraps an http.Handler with idempotency checking. Keys are scoped to
// the method and path so one key cannot replay another endpoint's response.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		scoped := r.Method + ":" + r.URL.Path + ":" + key

		exists, cached, err := m.store.CheckAndSet(r.Context(), scoped, nil, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			if string(cached) == usecase.IdempotencyPending {
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusConflict, "request with this idempotency key is in progress")
				return
			}

			var stored storedResponse
			if err := json.Unmarshal(cached, &stored); err != nil {
				m.logger.Error().Err(err).Str("key", key).Msg("corrupt idempotency record")
				writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(IdempotencyReplayHeader, "true")
			w.WriteHeader(stored.Status)
			w.Write(stored.Body)
			return
		}

		// Settle the key even after the client has gone away.
		finalizeCtx := func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.WithoutCancel(r.Context()), idempotencyFinalizeTimeout)
		}
		release := func() {
			ctx, cancel := finalizeCtx()
			defer cancel()
			if err := m.store.Release(ctx, scoped); err != nil {
				m.logger.Warn().Err(err).Str("key", key).Msg("failed to release idempotency key")
			}
		}
		defer func() {
			if p := recover(); p != nil {
				release()
				panic(p)
			}
		}()

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Server errors and retryable conflicts are released so the client can retry
		// with the same key; everything else is final.
		if recorder.statusCode >= http.StatusInternalServerError || recorder.statusCode == http.StatusConflict {
			release()
			return
		}

		payload, _ := json.Marshal(storedResponse{Status: recorder.statusCode, Body: recorder.body.Bytes()})
		ctx, cancel := finalizeCtx()
		defer cancel()
		if err := m.store.Update(ctx, scoped, payload, m.ttl); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("failed to store idempotent response")
		}
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
