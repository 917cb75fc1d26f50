package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/incubo-lab/pitchreview/pkg/domain/model"
	"github.com/incubo-lab/pitchreview/pkg/domain/model/auth"
	"github.com/incubo-lab/pitchreview/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// requestLogger attaches a logger carrying the request id to the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func bearerToken(r *http.Request) string {
	v := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(v, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authMiddleware resolves the bearer token to a session and puts it in the context
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// For NoAuthn mode, always use the anonymous reviewer
			if authUC.IsNoAuthn() {
				token, err := authUC.ValidateToken(ctx, "")
				if err != nil {
					writeError(ctx, w, err)
					return
				}
				next.ServeHTTP(w, r.WithContext(auth.ContextWithToken(ctx, token)))
				return
			}

			bearer := bearerToken(r)
			if bearer == "" {
				writeError(ctx, w, goerr.Wrap(model.ErrUnauthenticated, "authentication required"))
				return
			}

			token, err := authUC.ValidateToken(ctx, bearer)
			if err != nil {
				writeError(ctx, w, err)
				return
			}

			ctx = auth.ContextWithToken(ctx, token)
			ctx = logging.With(ctx, logging.From(ctx).With("actor", token.Sub))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
