package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesUserAndToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@x.com", user.Email)
	require.NotEqual(t, "secret1", user.PasswordHash)
	require.NotEmpty(t, token)

	require.EqualValues(t, 1, userCount(t, svc.Repo))

	resolved, _, err := svc.Tokens.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	for _, field := range []string{"name", "username", "email", "phone", "password"} {
		require.NotEmpty(t, ve.Fields[field], "expected error for %q", field)
	}
	require.EqualValues(t, 0, userCount(t, svc.Repo))

	in := validRegisterInput()
	in.PasswordConfirmation = "different"
	_, _, err = svc.Register(ctx, in)
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["password"])

	in = validRegisterInput()
	in.Email = "not-an-email"
	_, _, err = svc.Register(ctx, in)
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["email"])

	in = validRegisterInput()
	in.Phone = "123"
	_, _, err = svc.Register(ctx, in)
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["phone"])

	in = validRegisterInput()
	in.Password = "12345"
	in.PasswordConfirmation = "12345"
	_, _, err = svc.Register(ctx, in)
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["password"])

	require.EqualValues(t, 0, userCount(t, svc.Repo))
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	var ve *ValidationError

	in := validRegisterInput()
	in.Email = "other@x.com"
	_, _, err = svc.Register(ctx, in)
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["username"])

	in = validRegisterInput()
	in.Username = "bob"
	_, _, err = svc.Register(ctx, in)
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["email"])

	require.EqualValues(t, 1, userCount(t, svc.Repo))
}

func TestLoginIssuesFreshToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, tokenA, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	loggedIn, tokenB, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
	require.NotEqual(t, tokenA, tokenB)

	// both sessions stay valid
	_, _, err = svc.Tokens.Resolve(ctx, tokenA)
	require.NoError(t, err)
	_, _, err = svc.Tokens.Resolve(ctx, tokenB)
	require.NoError(t, err)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginMissingFields(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, "", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["username"])
	require.NotEmpty(t, ve.Fields["password"])
}

func TestLogoutRevokesOnlyPresentedToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, tokenA, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	_, tokenB, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, tokenAID, err := svc.Tokens.Resolve(ctx, tokenA)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, user, tokenAID))

	_, _, err = svc.Tokens.Resolve(ctx, tokenA)
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, _, err = svc.Tokens.Resolve(ctx, tokenB)
	require.NoError(t, err)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	phone := "0899999999"
	updated, err := svc.UpdateProfile(ctx, user, UpdateProfileInput{Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, "0899999999", updated.Phone)
	require.Equal(t, "alice@x.com", updated.Email)
	require.Equal(t, "alice", updated.Username)
	require.Equal(t, "Alice Flowers", updated.Name)

	stored, err := svc.Repo.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "0899999999", stored.Phone)
	require.Equal(t, "alice@x.com", stored.Email)
}

func TestUpdateProfileEmailUniqueness(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	alice, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	in := validRegisterInput()
	in.Username = "bob"
	in.Email = "bob@x.com"
	_, _, err = svc.Register(ctx, in)
	require.NoError(t, err)

	taken := "bob@x.com"
	_, err = svc.UpdateProfile(ctx, alice, UpdateProfileInput{Email: &taken})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["email"])

	// re-submitting the current address passes the self-exclusion
	own := "alice@x.com"
	_, err = svc.UpdateProfile(ctx, alice, UpdateProfileInput{Email: &own})
	require.NoError(t, err)
}

func TestUpdateProfileInvalidFields(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	badEmail := "not-an-email"
	_, err = svc.UpdateProfile(ctx, user, UpdateProfileInput{Email: &badEmail})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["email"])

	badPhone := "123"
	_, err = svc.UpdateProfile(ctx, user, UpdateProfileInput{Phone: &badPhone})
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Fields["phone"])

	stored, err := svc.Repo.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", stored.Email)
	require.Equal(t, "0812345678", stored.Phone)
}

// Full session lifecycle: register, second login, per-token logout, partial
// profile update.
func TestAuthLifecycle(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	alice, tokenA, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, tokenB, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.NotEqual(t, tokenA, tokenB)

	_, tokenAID, err := svc.Tokens.Resolve(ctx, tokenA)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, alice, tokenAID))

	_, _, err = svc.Tokens.Resolve(ctx, tokenA)
	require.ErrorIs(t, err, ErrUnauthenticated)

	userB, _, err := svc.Tokens.Resolve(ctx, tokenB)
	require.NoError(t, err)

	phone := "0899999999"
	updated, err := svc.UpdateProfile(ctx, userB, UpdateProfileInput{Phone: &phone})
	require.NoError(t, err)
	require.Equal(t, "0899999999", updated.Phone)
	require.Equal(t, "alice@x.com", updated.Email)
}
