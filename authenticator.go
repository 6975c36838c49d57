package auth

import (
	"context"
)

// Auther is the default Authenticator implementation. It verifies
// credentials against the identity provider and issues tokens whose subject
// is the user's subject identifier.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, tokenService TokenService) *Auther {
	return &Auther{
		provider:     provider,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the presented credentials and returns a signed token for
// the identity's subject identifier
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	if identity == nil {
		s.logger.Error("Login identity is nil")
		return "", ErrIdentityNotFound
	}

	return s.tokenService.Generate(identity.Username())
}

// Verify validates a raw token and returns its claims
func (s *Auther) Verify(token string) (AuthClaims, error) {
	claims, err := s.tokenService.Validate(token)
	if err != nil {
		s.logger.Debug("Verify token validation failed", "error", err)
		return nil, err
	}
	return claims, nil
}

// IdentityFromToken validates the token and resolves its subject through
// the identity provider
func (s *Auther) IdentityFromToken(ctx context.Context, token string) (Identity, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return nil, err
	}

	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.Subject())
	if err != nil {
		s.logger.Error("IdentityFromToken find identity by identifier: %s", err)
		return nil, err
	}

	return identity, nil
}

var _ Authenticator = (*Auther)(nil)
