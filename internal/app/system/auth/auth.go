// Package auth resolves the bearer credential on each request into the
// caller's identity.
//
// The token is a signed HS256 JWT bound to the user's id and username.
// LoadBearerUser runs globally and injects the identity into the request
// context; handlers read it back with CurrentUser. A missing, malformed, or
// expired token resolves to anonymous; operations that require identity
// gate on RequireSignedIn, which short-circuits before any store access.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/meethub/internal/app/system/apierr"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SessionUser is the resolved caller identity injected into r.Context().
type SessionUser struct {
	ID       primitive.ObjectID
	Username string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// Claims is the JWT payload. Subject carries the user id hex.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies bearer tokens.
type TokenManager struct {
	key []byte
	ttl time.Duration
	log *zap.Logger
}

// NewTokenManager builds a TokenManager from the configured signing key and
// token lifetime.
func NewTokenManager(key string, ttl time.Duration, logger *zap.Logger) (*TokenManager, error) {
	if key == "" {
		return nil, fmt.Errorf("token key is empty; provide ≥32 random chars")
	}
	if len(key) < 32 {
		logger.Warn("token key is short; 32+ chars recommended",
			zap.Int("length", len(key)))
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TokenManager{key: []byte(key), ttl: ttl, log: logger}, nil
}

// Sign issues a bearer token bound to the given user.
func (m *TokenManager) Sign(id primitive.ObjectID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.key)
}

// Parse verifies a token string and returns the identity it carries.
func (m *TokenManager) Parse(tokenStr string) (*SessionUser, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) { return m.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", err)
	}
	return &SessionUser{ID: id, Username: claims.Username}, nil
}

// CurrentUser returns the caller identity and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadBearerUser injects the identity into context when the request carries
// a valid Authorization: Bearer token. Everything else stays anonymous.
func (m *TokenManager) LoadBearerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			next.ServeHTTP(w, r)
			return
		}
		u, err := m.Parse(strings.TrimSpace(tokenStr))
		if err != nil {
			m.log.Debug("bearer token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadBearerUser).
// Anonymous callers get a 401 before the handler touches the store.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			apierr.Write(w, apierr.Authentication("you need to be logged in"), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithTestUser injects an identity directly, bypassing token parsing.
// Handler tests use this instead of minting real tokens.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
