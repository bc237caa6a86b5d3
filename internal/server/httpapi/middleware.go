package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophprovider/internal/common"
	"github.com/dmitrijs2005/gophprovider/internal/server/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// ClaimsFromContext returns the claims of the authenticated caller.
func ClaimsFromContext(ctx context.Context) (*auth.ClaimSet, bool) {
	cs, ok := ctx.Value(claimsKey).(*auth.ClaimSet)
	return cs, ok
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get(common.AuthorizationHeaderName), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authenticate rejects requests without a valid bearer token with 401 and
// stores the verified claims in the request context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", common.BearerScheme)
			writeErrorMessage(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		cs, err := h.signer.Verify(token)
		if err != nil {
			desc := "invalid token"
			if errors.Is(err, common.ErrTokenExpired) {
				desc = "token expired"
			}
			w.Header().Set("WWW-Authenticate", common.BearerScheme+` error="invalid_token", error_description="`+desc+`"`)
			writeErrorMessage(w, http.StatusUnauthorized, desc)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, cs)))
	})
}

// requirePolicy answers 403 unless the caller's claims satisfy policy.
// It must run after authenticate.
func (h *Handler) requirePolicy(policy string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cs, _ := ClaimsFromContext(r.Context())
			if h.authz.Authorize(cs, policy) != auth.Allow {
				var user string
				if cs != nil {
					user = cs.UserID
				}
				h.log.Info(r.Context(), "access denied", "policy", policy, "user_id", user)
				writeErrorMessage(w, http.StatusForbidden, common.ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		h.log.Info(r.Context(), "request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
