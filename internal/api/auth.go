package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

// userID returns the authenticated user, or "" when auth is disabled.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

// authenticate validates an HS256 bearer token and stores its subject as
// the request's user. It passes everything through when no secret is set.
func (s *Server) authenticate(next http.Handler) http.Handler {
	secret := strings.TrimSpace(s.jwtSecret)
	if secret == "" {
		return next
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const p = "Bearer "
		ah := r.Header.Get("Authorization")
		if !strings.HasPrefix(ah, p) {
			unauthorized(w, "missing bearer token")
			return
		}
		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(strings.TrimSpace(strings.TrimPrefix(ah, p)), claims, keyFunc)
		if err != nil || !token.Valid {
			unauthorized(w, "invalid token")
			return
		}
		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			unauthorized(w, "user id missing")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sub)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, msg, http.StatusUnauthorized)
}
