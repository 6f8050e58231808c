package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/rob-hayward/ProjectZer0-sub005/pkg/common"
	pkgerrors "github.com/rob-hayward/ProjectZer0-sub005/pkg/errors"
)

type contextKey string

const userIDKey contextKey = "userID"

// Identity resolves the requesting user from a bearer token. The token is
// optional: anonymous requests pass through with no user in context, and
// handlers that mutate state enforce presence via RequireUser. The core
// never validates credentials itself; this middleware is the identity
// collaborator boundary.
func Identity(secret, issuer string, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			claims := jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(parts[1], &claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithIssuer(issuer))
			if err != nil || !token.Valid || claims.Subject == "" {
				logger.Debug("Rejected bearer token", zap.Error(err))
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the resolved user id, or empty for anonymous
// requests.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// RequireUser returns the resolved user id or an unauthorized error.
func RequireUser(ctx context.Context) (string, error) {
	id := UserIDFromContext(ctx)
	if id == "" {
		return "", pkgerrors.NewUnauthorizedError("authentication required")
	}
	return id, nil
}
