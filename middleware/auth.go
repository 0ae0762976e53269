package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/RaviiSharma/Amazon-Clone/utils"
	"github.com/gorilla/mux"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// ClaimsFromContext returns the verified claims attached by Authenticate.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// Authenticate verifies the bearer token and attaches its claims to the context
func Authenticate(tm *utils.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized", "authentication failed: token not found")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized", "invalid Authorization header format")
				return
			}

			claims, err := tm.ParseJWT(parts[1])
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized", "authentication failed: invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthorizeOwner lets the request through only when the {userId} path
// parameter is the authenticated user.
func AuthorizeOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := mux.Vars(r)["userId"]
		if !utils.IsValidObjectID(userID) {
			utils.RespondError(w, http.StatusBadRequest, "ValidationError", "enter a valid userId")
			return
		}
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized", "authentication failed")
			return
		}
		if claims.UserID != userID {
			utils.RespondError(w, http.StatusForbidden, "Forbidden", "unauthorized access")
			return
		}
		next.ServeHTTP(w, r)
	})
}
