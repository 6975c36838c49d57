package auth_test

import (
	"context"
	"testing"
	"time"

	auth "github.com/goliatone/go-userauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokenService(t, 3600, &now)

	t.Run("issues a token whose subject is the username", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "alice", "pwd").Return(FakeIdentity{
			IDValue:       1,
			UsernameValue: "alice",
		}, nil)

		auther := auth.NewAuthenticator(provider, tokens)
		token, err := auther.Login(ctx, "alice", "pwd")

		require.NoError(t, err)

		subject, err := tokens.Subject(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})

	t.Run("bad credentials propagate", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("VerifyIdentity", ctx, "alice", "nope").
			Return(nil, auth.ErrMismatchedHashAndPassword)

		auther := auth.NewAuthenticator(provider, tokens)
		token, err := auther.Login(ctx, "alice", "nope")

		assert.Empty(t, token)
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})
}

func TestAuther_Verify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokenService(t, 3600, &now)
	auther := auth.NewAuthenticator(&MockIdentityProvider{}, tokens)

	t.Run("returns claims for a valid token", func(t *testing.T) {
		token, err := tokens.Generate("alice")
		require.NoError(t, err)

		claims, err := auther.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := auther.Verify("garbage")
		assert.Error(t, err)
	})
}

func TestAuther_IdentityFromToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokenService(t, 3600, &now)

	t.Run("resolves the subject into an identity", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		provider.On("FindIdentityByIdentifier", ctx, "alice").Return(FakeIdentity{
			IDValue:       1,
			UsernameValue: "alice",
			RolesValue:    []string{auth.RoleUser},
		}, nil)

		auther := auth.NewAuthenticator(provider, tokens)

		token, err := tokens.Generate("alice")
		require.NoError(t, err)

		identity, err := auther.IdentityFromToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "alice", identity.Username())
	})

	t.Run("validation failure short circuits the lookup", func(t *testing.T) {
		provider := &MockIdentityProvider{}
		auther := auth.NewAuthenticator(provider, tokens)

		_, err := auther.IdentityFromToken(ctx, "garbage")
		assert.Error(t, err)
		provider.AssertNotCalled(t, "FindIdentityByIdentifier")
	})
}
