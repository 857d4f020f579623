package middleware

import (
	"context"
	"net/http"

	"github.com/fermentlab/insightd/internal/domain"
)

type contextKey string

const (
	OwnerIDKey      contextKey = "owner_id"
	SessionTokenKey contextKey = "session_token"
)

// Scope extracts the optional X-Owner-ID and X-Session-Token headers into
// context. Both are trust-the-caller identifiers; requests without either
// read the global library.
func Scope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ownerID := r.Header.Get("X-Owner-ID"); ownerID != "" {
			ctx = context.WithValue(ctx, OwnerIDKey, ownerID)
		}
		if token := r.Header.Get("X-Session-Token"); token != "" {
			ctx = context.WithValue(ctx, SessionTokenKey, token)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwnerID returns the owner ID from context.
func GetOwnerID(ctx context.Context) string {
	ownerID, _ := ctx.Value(OwnerIDKey).(string)
	return ownerID
}

// GetSessionToken returns the session token from context.
func GetSessionToken(ctx context.Context) string {
	token, _ := ctx.Value(SessionTokenKey).(string)
	return token
}

// GetScope assembles the search scope from context.
func GetScope(ctx context.Context) domain.Scope {
	return domain.Scope{
		OwnerID:      GetOwnerID(ctx),
		SessionToken: GetSessionToken(ctx),
	}
}
