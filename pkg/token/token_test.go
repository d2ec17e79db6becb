package token_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopmind/shop-api/pkg/token"
)

func newManager(t *testing.T, dir string, ttl time.Duration) *token.Manager {
	t.Helper()
	m, err := token.NewManager(
		filepath.Join(dir, "jwt.pem"),
		filepath.Join(dir, "jwt.pub.pem"),
		ttl,
	)
	require.NoError(t, err)
	return m
}

func TestManager_SignAndVerify(t *testing.T) {
	m := newManager(t, t.TempDir(), time.Hour)

	user := token.UserClaims{
		Username: "tester",
		Name:     "Иван",
		LastName: "Петров",
		Email:    "tester@example.com",
		Status:   "ACTIVE",
	}

	signed, err := m.Sign("user-1", user)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, user, claims.User)
}

func TestManager_GeneratesKeysOnce(t *testing.T) {
	dir := t.TempDir()

	first := newManager(t, dir, time.Hour)
	signed, err := first.Sign("user-1", token.UserClaims{Username: "tester"})
	require.NoError(t, err)

	// второй менеджер читает те же ключи с диска,
	// токены первого остаются валидными
	second := newManager(t, dir, time.Hour)
	claims, err := second.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)

	info, err := os.Stat(filepath.Join(dir, "jwt.pem"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestManager_VerifyRejectsForeignKey(t *testing.T) {
	first := newManager(t, t.TempDir(), time.Hour)
	second := newManager(t, t.TempDir(), time.Hour)

	signed, err := first.Sign("user-1", token.UserClaims{Username: "tester"})
	require.NoError(t, err)

	_, err = second.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestManager_VerifyRejectsExpired(t *testing.T) {
	m := newManager(t, t.TempDir(), -time.Minute)

	signed, err := m.Sign("user-1", token.UserClaims{Username: "tester"})
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestManager_VerifyRejectsGarbage(t *testing.T) {
	m := newManager(t, t.TempDir(), time.Hour)

	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}
