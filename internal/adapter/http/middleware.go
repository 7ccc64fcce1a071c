package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"weighttrack/internal/app"
	"weighttrack/internal/logging"
)

type contextKey string

const principalContextKey contextKey = "principal"

// Principal returns the authenticated caller stored on ctx, if any.
func Principal(ctx context.Context) string {
	p, _ := ctx.Value(principalContextKey).(string)
	return p
}

// authMiddleware validates bearer tokens when authentication is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="weightsd"`)
			writeError(w, http.StatusUnauthorized, app.ErrUnauthorized)
			return
		}
		principal, err := s.auth.Authenticate(r.Context(), token)
		if errors.Is(err, app.ErrUnauthorized) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="weightsd", error="invalid_token"`)
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.New("internal error"))
			return
		}

		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String(logging.FieldMethod, r.Method),
			zap.String(logging.FieldPath, r.URL.Path),
			zap.Int(logging.FieldStatus, rec.status),
			zap.Duration(logging.FieldDuration, time.Since(start)))
	})
}
