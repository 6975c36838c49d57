package auth

import (
	"context"

	"github.com/goliatone/go-userauth/middleware/authware"
)

// ResolverAdapter bridges an identity provider into the middleware's
// resolver interface
type ResolverAdapter struct {
	provider IdentityProvider
}

func NewResolverAdapter(provider IdentityProvider) *ResolverAdapter {
	return &ResolverAdapter{provider: provider}
}

func (a *ResolverAdapter) ResolveSubject(ctx context.Context, subject string) (authware.Principal, error) {
	identity, err := a.provider.FindIdentityByIdentifier(ctx, subject)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// ContextEnricher copies the bound principal into the request context so
// code below the HTTP layer can read it through IdentityFromContext
func ContextEnricher(ctx context.Context, principal authware.Principal) context.Context {
	if identity, ok := principal.(Identity); ok {
		return WithIdentityContext(ctx, identity)
	}
	return ctx
}

// PipelineConfig assembles the middleware configuration from root level
// collaborators, keeping the wiring in one place
func PipelineConfig(cfg Config, tokens TokenService, provider IdentityProvider, logger Logger) authware.Config {
	return authware.Config{
		Validator:       tokens,
		Resolver:        NewResolverAdapter(provider),
		SharedSecret:    cfg.GetSharedSecret(),
		ServiceSubject:  cfg.GetServiceSubject(),
		CookieName:      cfg.GetCookieName(),
		ContextKey:      LocalsIdentityKey,
		ContextEnricher: ContextEnricher,
		Logger:          logger,
	}
}
