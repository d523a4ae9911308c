package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloombouqet/bloom_shop/internal/models"
)

func seedUser(t *testing.T, svc *TokenService) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Alice Flowers",
		Username:     "alice",
		Email:        "alice@x.com",
		Phone:        "0812345678",
		PasswordHash: "x",
	}
	require.NoError(t, svc.Repo.CreateUser(context.Background(), user))
	return user
}

func TestIssueAndResolve(t *testing.T) {
	svc := NewTokenService(initTestRepo(t))
	ctx := context.Background()
	user := seedUser(t, svc)

	value, tokenID, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, value, 64, "32 random bytes hex encoded")
	require.NotZero(t, tokenID)

	resolved, resolvedID, err := svc.Resolve(ctx, value)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
	require.Equal(t, tokenID, resolvedID)
}

func TestIssuedTokensAreDistinct(t *testing.T) {
	svc := NewTokenService(initTestRepo(t))
	ctx := context.Background()
	user := seedUser(t, svc)

	a, _, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)
	b, _, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestPlaintextValueIsNotStored(t *testing.T) {
	svc := NewTokenService(initTestRepo(t))
	ctx := context.Background()
	user := seedUser(t, svc)

	value, _, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)

	var tokens []models.AccessToken
	require.NoError(t, svc.Repo.DB.Find(&tokens).Error)
	require.Len(t, tokens, 1)
	require.NotEqual(t, value, tokens[0].TokenHash)
	require.Equal(t, Sha256Hex(value), tokens[0].TokenHash)
}

func TestResolveUnknownToken(t *testing.T) {
	svc := NewTokenService(initTestRepo(t))
	ctx := context.Background()

	_, _, err := svc.Resolve(ctx, "")
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, _, err = svc.Resolve(ctx, "deadbeef")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRevoke(t *testing.T) {
	svc := NewTokenService(initTestRepo(t))
	ctx := context.Background()
	user := seedUser(t, svc)

	value, tokenID, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, tokenID))
	_, _, err = svc.Resolve(ctx, value)
	require.ErrorIs(t, err, ErrUnauthenticated)

	// revoking again is a no-op success
	require.NoError(t, svc.Revoke(ctx, tokenID))
}

func TestResolveAfterOwnerDeleted(t *testing.T) {
	svc := NewTokenService(initTestRepo(t))
	ctx := context.Background()
	user := seedUser(t, svc)

	value, _, err := svc.Issue(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Repo.DB.Delete(&models.User{}, user.ID).Error)

	_, _, err = svc.Resolve(ctx, value)
	require.ErrorIs(t, err, ErrUnauthenticated)
}
