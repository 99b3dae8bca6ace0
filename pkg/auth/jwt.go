// Package auth issues and checks the HS256 bearer tokens riskd accepts on
// gRPC and HTTP.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTConfig configures token issuance and validation.
type JWTConfig struct {
	Secret string
	Issuer string
	// Audience, when set, is stamped on issued tokens and required on
	// validated ones.
	Audience   string
	Expiration time.Duration
	// Leeway tolerates clock skew on exp and nbf.
	Leeway time.Duration
}

// JWTService issues and validates tokens.
type JWTService struct {
	secret []byte
	config JWTConfig
	parser *jwt.Parser
}

// NewJWTService creates a JWTService. A secret is required; Expiration
// defaults to one hour.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt configuration requires a secret")
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = time.Hour
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &JWTService{
		secret: []byte(cfg.Secret),
		config: cfg,
		parser: jwt.NewParser(opts...),
	}, nil
}

// GenerateToken signs a token for subject. Every role must be one of the
// Role constants.
func (s *JWTService) GenerateToken(subject string, roles []string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject is required")
	}
	for _, r := range roles {
		if !KnownRole(r) {
			return "", fmt.Errorf("unknown role %q", r)
		}
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Roles: roles,
	}
	if s.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.config.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, lifetime, issuer and audience, and
// rejects tokens without a subject.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
