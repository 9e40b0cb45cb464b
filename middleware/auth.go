package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"student-track-backend/auth"
)

// TokenVerifier проверяет bearer-токен и возвращает его claims.
type TokenVerifier interface {
	VerifyToken(tokenString string) (auth.Claims, *auth.AuthError)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate проверяет JWT токен и кладет claims в контекст запроса
func (am *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IsPublicRoute(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, authErr := auth.GetTokenFromHeader(r)
		if authErr != nil {
			log.Printf("❌ %s for %s %s", authErr.Code, r.Method, r.URL.Path)
			WriteAuthError(w, authErr)
			return
		}

		claims, authErr := am.verifier.VerifyToken(token)
		if authErr != nil {
			log.Printf("❌ Token rejected for %s %s: %v", r.Method, r.URL.Path, authErr)
			WriteAuthError(w, authErr)
			return
		}

		ctx := SetClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission пропускает запрос дальше только если верифицированные
// claims содержат нужное разрешение. Вызывается после Authenticate.
func RequirePermission(permission string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			WriteAuthError(w, &auth.AuthError{
				Code:        "authorization_header_missing",
				Description: "Authorization header is expected",
				Status:      http.StatusUnauthorized,
			})
			return
		}

		if authErr := auth.CheckPermissions(permission, claims); authErr != nil {
			log.Printf("❌ Permission %q denied for %s %s", permission, r.Method, r.URL.Path)
			WriteAuthError(w, authErr)
			return
		}

		next(w, r)
	}
}

// WriteAuthError отправляет структурированное тело {error, description}
func WriteAuthError(w http.ResponseWriter, authErr *auth.AuthError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(authErr.Status)
	if err := json.NewEncoder(w).Encode(authErr); err != nil {
		log.Printf("❌ Error encoding auth error response: %v", err)
	}
}

// Вспомогательные функции для работы с контекстом
type contextKey string

const (
	claimsKey contextKey = "claims"
)

// SetClaims добавляет claims в контекст
func SetClaims(ctx context.Context, claims auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims извлекает claims из контекста
func GetClaims(ctx context.Context) auth.Claims {
	if claims, ok := ctx.Value(claimsKey).(auth.Claims); ok {
		return claims
	}
	return nil
}
