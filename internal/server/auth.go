package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trackme/parcels/internal/repository"
	"github.com/trackme/parcels/internal/tracking"
)

var errInvalidToken = errors.New("invalid token")

type tokenClaims struct {
	Role             string `json:"role"`
	CourierServiceID string `json:"courierServiceId"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens. The subject is the user's e-mail.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(user *repository.User) (string, time.Time, error) {
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Role:             user.Role,
		CourierServiceID: user.CourierServiceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (t *TokenIssuer) Parse(tokenString string) (tracking.Actor, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return tracking.Actor{}, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return tracking.Actor{}, errInvalidToken
	}

	return tracking.Actor{
		Email:            claims.Subject,
		Role:             claims.Role,
		CourierServiceID: claims.CourierServiceID,
	}, nil
}

type actorKey struct{}

func withActor(ctx context.Context, actor tracking.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFromContext(ctx context.Context) tracking.Actor {
	actor, _ := ctx.Value(actorKey{}).(tracking.Actor)
	return actor
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="trackme"`)
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "Missing bearer token")
			return
		}

		actor, err := s.tokens.Parse(tokenString)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="trackme", error="invalid_token"`)
			respondError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
	})
}

// requireRole rejects actors whose token carries none of roles.
func requireRole(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !slices.Contains(roles, actorFromContext(r.Context()).Role) {
			respondError(w, http.StatusForbidden, codeForbidden, "Insufficient permissions")
			return
		}
		next(w, r)
	}
}
