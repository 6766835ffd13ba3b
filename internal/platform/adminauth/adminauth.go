// Package adminauth issues and validates the HS256 bearer tokens that guard
// administrative endpoints such as project creation.
package adminauth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "landing/pkg/domain-errors"
)

const (
	roleAdmin = "admin"
	audience  = "landing-admin"

	// APIKeySubject is reported for requests authenticated by the static key.
	APIKeySubject = "api-key"
)

// Claims are the admin token claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles admin token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	apiKeyHash []byte
	now        func() time.Time
}

type Option func(*Service)

// WithAPIKeyHash also accepts a long-lived key whose bcrypt hash is hash.
// Useful for CI seeding where minting JWTs is awkward.
func WithAPIKeyHash(hash string) Option {
	return func(s *Service) {
		if hash != "" {
			s.apiKeyHash = []byte(hash)
		}
	}
}

// New constructs a Service. With no signing key and no API key hash every
// validation fails.
func New(signingKey, issuer string, opts ...Option) *Service {
	s := &Service{signingKey: []byte(signingKey), issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether any admin credential is configured.
func (s *Service) Enabled() bool {
	return len(s.signingKey) > 0 || len(s.apiKeyHash) > 0
}

// HashAPIKey returns the bcrypt hash to put in ADMIN_API_KEY_HASH.
func HashAPIKey(key string) (string, error) {
	if len(key) < 16 {
		return "", errors.New("api key must be at least 16 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Issue mints an admin token for subject valid for ttl.
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	if len(s.signingKey) == 0 {
		return "", errors.New("admin signing key is not configured")
	}
	if subject == "" {
		return "", errors.New("admin subject is required")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate verifies signature, expiry, issuer, audience and role, and returns
// the token subject.
func (s *Service) Validate(tokenString string) (string, error) {
	if len(s.apiKeyHash) > 0 && strings.Count(tokenString, ".") != 2 {
		if bcrypt.CompareHashAndPassword(s.apiKeyHash, []byte(tokenString)) == nil {
			return APIKeySubject, nil
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if len(s.signingKey) == 0 {
		return "", dErrors.New(dErrors.CodeUnauthorized, "admin access is disabled")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Role != roleAdmin {
		return "", dErrors.New(dErrors.CodeUnauthorized, "token does not grant admin access")
	}
	return claims.Subject, nil
}
