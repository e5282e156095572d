package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quiz-backend/internal/app"
	"quiz-backend/internal/domain"
)

type userContextKey struct{}

// UserFromContext returns the authenticated user attached by AuthMiddleware.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(domain.User)
	return user, ok
}

// AuthMiddleware verifies the Bearer token (HMAC, user id in the `sub` claim),
// confirms the user still exists, and attaches it to the request context.
// Token minting lives in the auth collaborator, not here.
func AuthMiddleware(users app.UserRepository, secret string, log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeMessage(w, http.StatusUnauthorized, "not authorized, no token")
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeMessage(w, http.StatusUnauthorized, "invalid authorization header format, must be 'Bearer <token>'")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.WithError(err).Debug("token verification failed")
				writeMessage(w, http.StatusUnauthorized, "not authorized, token failed")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "invalid token claims")
				return
			}
			subject, ok := claims["sub"].(string)
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "invalid token: missing user id")
				return
			}
			userID, err := uuid.Parse(subject)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "invalid token: malformed user id")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "user not found")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates admin routes. Runs after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || user.Role != domain.RoleAdmin {
			writeMessage(w, http.StatusForbidden, "not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}
