package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/api/responses"
	pkgauth "github.com/minhlong-dev/industro-backend/pkg/auth"
	pkgerrors "github.com/minhlong-dev/industro-backend/pkg/errors"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
)

// TokenParser validates a raw access token and returns its claims.
type TokenParser interface {
	Parse(raw string) (*pkgauth.Claims, error)
}

// SessionChecker reports whether the user still has a live session. A
// revoked session invalidates access tokens that have not yet expired.
type SessionChecker interface {
	HasSession(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(tokens TokenParser, sessions SessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := claimsFromRequest(r, tokens, sessions)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims, logg)))
		})
	}
}

// OptionalAuth seeds the context with claims when a valid bearer token is
// present and otherwise lets the request through anonymously. Guest cart
// and checkout routes use it so the same handlers serve both audiences.
// A token that is present but invalid is still rejected so a signed-in
// client never silently degrades to a guest cart.
func OptionalAuth(tokens TokenParser, sessions SessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := claimsFromRequest(r, tokens, sessions)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims, logg)))
		})
	}
}

func claimsFromRequest(r *http.Request, tokens TokenParser, sessions SessionChecker) (*pkgauth.Claims, error) {
	if tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "token parser unavailable")
	}

	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := tokens.Parse(token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	if sessions != nil {
		ok, err := sessions.HasSession(r.Context(), claims.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}

	return claims, nil
}

func contextWithClaims(ctx context.Context, claims *pkgauth.Claims, logg *logger.Logger) context.Context {
	ctx = WithUserID(ctx, claims.UserID.String())
	ctx = WithRole(ctx, string(claims.Role))
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"user_id":    claims.UserID.String(),
			"actor_role": string(claims.Role),
		})
	}
	return ctx
}
