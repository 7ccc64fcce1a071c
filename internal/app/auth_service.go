// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnauthorized indicates a missing or rejected bearer token.
	ErrUnauthorized = errors.New("unauthorized")
)

// TokenVerifier checks a bearer token issued by an identity provider and
// returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (string, error)
}

// AuthService authenticates API callers with a static API key (stored as a
// bcrypt hash) and/or identity-provider access tokens.
type AuthService struct {
	apiKeyHash []byte
	verifier   TokenVerifier
}

// NewAuthService creates an AuthService. Either argument may be empty/nil;
// with both missing, authentication is disabled.
func NewAuthService(apiKeyHash string, verifier TokenVerifier) *AuthService {
	s := &AuthService{verifier: verifier}
	if apiKeyHash != "" {
		s.apiKeyHash = []byte(apiKeyHash)
	}
	return s
}

// Enabled reports whether requests need a bearer token.
func (s *AuthService) Enabled() bool {
	return s.apiKeyHash != nil || s.verifier != nil
}

// Authenticate returns the principal behind token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthorized
	}
	if s.apiKeyHash != nil {
		if bcrypt.CompareHashAndPassword(s.apiKeyHash, []byte(token)) == nil {
			return "api-key", nil
		}
	}
	if s.verifier != nil {
		if subject, err := s.verifier.Verify(ctx, token); err == nil {
			return subject, nil
		}
	}
	return "", ErrUnauthorized
}

// HashAPIKey returns the bcrypt hash to configure for key.
func HashAPIKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("api key must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
