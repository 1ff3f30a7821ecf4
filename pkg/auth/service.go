package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service issues and validates the HS256 bearer tokens an A2A server can
// require on its RPC endpoint. Deployments with an external identity
// provider can skip this and plug their own Checker into the server.
type Service struct {
	signingKey []byte
}

// NewService creates an authentication service with the given signing key.
func NewService(signingKey []byte) *Service {
	return &Service{signingKey: signingKey}
}

func (s *Service) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.signingKey, nil
}

// GenerateToken issues a token for the given subject, valid for ttl.
func (s *Service) GenerateToken(subject string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	})

	signed, err := token.SignedString(s.signingKey)

	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Validate checks an Authorization header value holding a bearer token.
func (s *Service) Validate(authHeader string) error {
	if authHeader == "" {
		return fmt.Errorf("missing authorization header")
	}

	tokenStr := authHeader
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "bearer ") {
		tokenStr = authHeader[7:]
	}

	token, err := jwt.Parse(tokenStr, s.keyFunc)

	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return fmt.Errorf("token expired")
	}

	return nil
}
