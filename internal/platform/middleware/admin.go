package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "member-gateway/pkg/domain-errors"
	"member-gateway/pkg/platform/httputil"
)

// AdminClaims are the claims the gateway requires on administrator tokens.
// OrgID scopes everything an administrator does to one organization.
type AdminClaims struct {
	OrgID string `json:"org_id"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type contextKeyAdmin struct{}

// AdminFromContext returns the verified admin claims set by RequireAdmin.
func AdminFromContext(ctx context.Context) (*AdminClaims, bool) {
	claims, ok := ctx.Value(contextKeyAdmin{}).(*AdminClaims)
	return claims, ok
}

// RequireAdmin validates the Bearer token and requires the admin role.
// Failures are uniform unauthorized responses; the distinction between a
// missing, malformed, expired, or underprivileged token is logged, not
// revealed to the caller.
func RequireAdmin(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	keyFunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(signingKey), nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				writeUnauthorized(w)
				return
			}

			claims := &AdminClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				logger.WarnContext(ctx, "admin token rejected",
					"request_id", GetRequestID(ctx),
					"error", err,
				)
				writeUnauthorized(w)
				return
			}
			if claims.Role != "admin" {
				logger.WarnContext(ctx, "token lacks admin role",
					"request_id", GetRequestID(ctx),
					"role", claims.Role,
				)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, contextKeyAdmin{}, claims)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "administrator credentials required"))
}
