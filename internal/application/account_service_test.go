package application

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davitren/storefront/pkg/apperr"
	"github.com/davitren/storefront/pkg/helpers"
)

func newAccountFixture(t *testing.T) (*AccountService, *fakeUserRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := newFakeUserRepo()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	svc := NewAccountService(repo, jwt, rdb, nil, nil, "http://localhost:8080/reset-password", false)
	return svc, repo, mr
}

func signupUser(t *testing.T, svc *AccountService) string {
	t.Helper()
	u, err := svc.Signup(context.Background(), "buyer@example.com", "password123", "Buyer")
	require.NoError(t, err)
	return u.ID
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	signupUser(t, svc)

	_, err := svc.Signup(context.Background(), "buyer@example.com", "password123", "Someone Else")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSignupHashesPassword(t *testing.T) {
	svc, repo, _ := newAccountFixture(t)
	id := signupUser(t, svc)

	u, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", u.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(u.PasswordHash, "password123"))
}

func TestLoginStoresSession(t *testing.T) {
	svc, _, mr := newAccountFixture(t)
	id := signupUser(t, svc)

	res, pair, err := svc.Login(context.Background(), "buyer@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, id, res.UserID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	sid := mr.HGet(helpers.SessionKey(id), "sid")
	assert.NotEmpty(t, sid)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	signupUser(t, svc)

	_, _, err := svc.Login(context.Background(), "buyer@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "password123")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	id := signupUser(t, svc)

	_, pair, err := svc.Login(context.Background(), "buyer@example.com", "password123")
	require.NoError(t, err)

	newPair, uid, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id, uid)
	assert.NotEmpty(t, newPair.AccessToken)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc, _, _ := newAccountFixture(t)

	_, _, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
}

func TestRefreshRejectsStaleSession(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	id := signupUser(t, svc)

	_, old, err := svc.Login(context.Background(), "buyer@example.com", "password123")
	require.NoError(t, err)

	// A second login replaces the session, invalidating the first sid.
	_, _, err = svc.Login(context.Background(), "buyer@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Refresh(context.Background(), old.RefreshToken)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized), "stale sid for %s must be rejected", id)
}

func TestLogoutDeletesSession(t *testing.T) {
	svc, _, mr := newAccountFixture(t)
	id := signupUser(t, svc)

	_, _, err := svc.Login(context.Background(), "buyer@example.com", "password123")
	require.NoError(t, err)
	require.True(t, mr.Exists(helpers.SessionKey(id)))

	require.NoError(t, svc.Logout(context.Background(), id))
	assert.False(t, mr.Exists(helpers.SessionKey(id)))
	assert.False(t, mr.Exists(helpers.CSRFKey(id)))
}

func TestResetInitUnknownEmailIsSilent(t *testing.T) {
	svc, repo, _ := newAccountFixture(t)
	id := signupUser(t, svc)

	require.NoError(t, svc.ResetInit(context.Background(), "nobody@example.com"))

	u, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, u.ResetToken)
}

func TestResetTokenLifecycle(t *testing.T) {
	svc, repo, _ := newAccountFixture(t)
	id := signupUser(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.ResetInit(ctx, "buyer@example.com"))

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u.ResetToken)
	require.NotNil(t, u.ResetTokenExpiresAt)
	assert.WithinDuration(t, time.Now().Add(resetTokenTTL), *u.ResetTokenExpiresAt, 5*time.Second)

	require.NoError(t, svc.ResetConfirm(ctx, *u.ResetToken, "newpassword9"))

	// Token fields cleared together, new password active.
	u2, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, u2.ResetToken)
	assert.Nil(t, u2.ResetTokenExpiresAt)
	assert.True(t, helpers.CompareHashAndPassword(u2.PasswordHash, "newpassword9"))

	// A redeemed token cannot be used twice.
	err = svc.ResetConfirm(ctx, *u.ResetToken, "another1234")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestResetConfirmExpiredToken(t *testing.T) {
	svc, repo, _ := newAccountFixture(t)
	id := signupUser(t, svc)
	ctx := context.Background()

	require.NoError(t, repo.SetResetToken(ctx, id, "stale-token", time.Now().Add(-time.Minute)))

	err := svc.ResetConfirm(ctx, "stale-token", "newpassword9")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
