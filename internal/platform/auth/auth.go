package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/nueve-shop/api/internal/platform/httpx"
)

type contextKey string

const identityContextKey contextKey = "github.com/nueve-shop/api/internal/platform/auth/identity"

var (
	// ErrTokenInvalid indicates the bearer token failed signature or claim checks.
	ErrTokenInvalid = errors.New("auth: token invalid")
	// ErrTokenMissing indicates no bearer token accompanied the request.
	ErrTokenMissing = errors.New("auth: token missing")
)

// Identity is the authenticated principal resolved from a bearer token.
// Token issuance lives outside this service; only verification is carried here.
type Identity struct {
	UserID string
}

type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 bearer tokens against a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a Verifier. The secret must be non-empty.
func NewVerifier(secret string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify parses and validates the raw token, returning the resolved identity.
func (v *Verifier) Verify(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrTokenMissing
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		return Identity{}, fmt.Errorf("%w: missing userId claim", ErrTokenInvalid)
	}

	return Identity{UserID: userID}, nil
}

// Middleware extracts and validates the Authorization bearer token, storing
// the identity on the request context. Requests without a valid token are
// rejected with 401.
func Middleware(verifier *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identity, err := verifier.Verify(bearerToken(r))
			if err != nil {
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authentication required", http.StatusUnauthorized))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

// WithIdentity stores the identity on the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the authenticated identity when present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || strings.TrimSpace(identity.UserID) == "" {
		return Identity{}, false
	}
	return identity, true
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
