// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/LizaMalinina/npc-graph-sub001/internal/logging"
)

type contextKey string

// ClaimsContextKey is the request-context key holding the caller's *Claims.
const ClaimsContextKey contextKey = "claims"

// Middleware resolves the caller's session from the Authorization header or
// the "token" cookie and stores the claims in the request context.
type Middleware struct {
	jwtManager *JWTManager
}

// NewMiddleware creates authentication middleware backed by the given
// token manager.
func NewMiddleware(jwtManager *JWTManager) *Middleware {
	return &Middleware{jwtManager: jwtManager}
}

// Authenticate resolves the session token when one is presented.
//
// Anonymous requests pass through with no claims in context; downstream
// permission checks treat them as viewer rank. A present-but-invalid token is
// rejected with 401 so a client with an expired session learns about it
// instead of silently degrading to read-only.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := extractToken(r)
		if err != nil {
			// No credentials at all: anonymous request.
			next(w, r)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Token validation failed")
			http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// ClaimsFromContext retrieves the caller's claims, or nil when the request
// is anonymous.
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(ClaimsContextKey).(*Claims); ok {
		return claims
	}
	return nil
}

// ContextWithClaims stores claims in a context. Used by tests and by the
// login handler when issuing a fresh session.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// extractToken pulls the session token from the Authorization header,
// falling back to the "token" cookie.
func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie("token")
		if err != nil {
			return "", fmt.Errorf("missing token")
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}

	return parts[1], nil
}
