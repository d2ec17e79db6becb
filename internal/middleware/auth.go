package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopmind/shop-api/pkg/token"
	"github.com/shopmind/shop-api/pkg/utils"
)

type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

type claimsKey struct{}

// Auth проверяет bearer-токен и кладёт claims в контекст запроса.
// Разбор токена живёт в pkg/token, здесь только транспорт.
func Auth(tokens TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				utils.WriteError(w, "invalid session", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				utils.WriteError(w, "invalid session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID возвращает sub-клейм текущего пользователя.
func UserID(ctx context.Context) (string, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*token.Claims)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

func UserClaims(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*token.Claims)
	return claims, ok
}
