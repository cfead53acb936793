package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bellasalon/booking-platform/internal/auth"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorClaims is the JWT payload minted at sign-in.
type ActorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// MintActorToken signs an HMAC token for a profile.
func MintActorToken(secret string, profile *auth.Profile, ttl time.Duration) (string, error) {
	claims := ActorClaims{
		Role: string(profile.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			ID:        profile.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseActorToken validates tokenString and rebuilds the actor profile.
func ParseActorToken(secret, tokenString string) (*auth.Profile, error) {
	claims := ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return &auth.Profile{
		ID:    claims.Subject,
		Email: claims.ID,
		Role:  auth.Role(claims.Role),
	}, nil
}

// ActorJWT resolves the actor from a Bearer token when one is present and
// stores it in the request context. Requests without a token pass through
// with no actor; handlers decide what anonymous callers may do.
func ActorJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if secret == "" || !strings.HasPrefix(authz, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			profile, err := ParseActorToken(secret, strings.TrimPrefix(authz, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), actorKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff rejects requests whose actor is not admin or staff.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, ok := ActorFromContext(r.Context())
		if !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if profile.Role != auth.RoleAdmin && profile.Role != auth.RoleStaff {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromContext returns the authenticated actor if present.
func ActorFromContext(ctx context.Context) (*auth.Profile, bool) {
	profile, ok := ctx.Value(actorKey).(*auth.Profile)
	return profile, ok
}

// WithActor injects an actor into ctx. Tests use it to fake authentication.
func WithActor(ctx context.Context, profile *auth.Profile) context.Context {
	return context.WithValue(ctx, actorKey, profile)
}
