package httpserver

import (
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// Token transport headers. Absence is represented by literal sentinels, not
// an error: the verification layer treats them as any other invalid token.
const (
	headerAccessToken  = "AccessToken"
	headerRefreshToken = "RefreshToken"

	noAccessToken  = "no-access-token"
	noRefreshToken = "no-refresh-token"
)

// authMiddleware resolves an identity from the token pair on every request
// and re-emits the (possibly rotated) pair in the response headers. Requests
// without a resolvable identity proceed unauthenticated; handlers that need
// one reject them.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access := r.Header.Get(headerAccessToken)
		if access == "" {
			access = noAccessToken
		}
		refresh := r.Header.Get(headerRefreshToken)
		if refresh == "" {
			refresh = noRefreshToken
		}

		ident, rotated, err := s.auth.Verify(r.Context(), access, refresh)
		if err != nil {
			emitTokens(w, "", "")
			next.ServeHTTP(w, r)
			return
		}
		if rotated != nil {
			emitTokens(w, rotated.AccessToken, rotated.RefreshToken)
		} else {
			emitTokens(w, access, refresh)
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
	})
}

// emitTokens mirrors the pair back so browser clients can read it.
func emitTokens(w http.ResponseWriter, access, refresh string) {
	w.Header().Set("Access-Control-Expose-Headers", headerAccessToken+", "+headerRefreshToken)
	w.Header().Set(headerAccessToken, access)
	w.Header().Set(headerRefreshToken, refresh)
}

// statusRecorder captures the response code for logging.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// logMiddleware emits one structured line per request; no payloads.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("http",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.code),
			zap.Duration("dur", time.Since(start)),
			zap.String("remote", remoteIP(r)),
		)
	})
}

// recoverMiddleware converts panics into 500s.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic",
					zap.Any("reason", rec),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
