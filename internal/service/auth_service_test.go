package service

import (
	"context"
	"testing"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoginWithPlainPIN(t *testing.T) {
	cfg := &config.Config{AdminPIN: "4321", SessionSecret: "s3cret", SessionTTLMinutes: 30}
	svc := NewAuthService(cfg)
	ctx := context.Background()

	_, err := svc.LoginWithPIN(ctx, "0000")
	assert.ErrorIs(t, err, ErrInvalidPIN)
	_, err = svc.LoginWithPIN(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidPIN)

	res, err := svc.LoginWithPIN(ctx, " 4321 ")
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, 1800, res.ExpiresIn)
	assert.NoError(t, svc.ValidateToken(res.AccessToken))

	other := NewAuthService(&config.Config{AdminPIN: "4321", SessionSecret: "different"})
	assert.ErrorIs(t, other.ValidateToken(res.AccessToken), ErrInvalidPIN)
	assert.ErrorIs(t, svc.ValidateToken("garbage"), ErrInvalidPIN)
}

func TestLoginPrefersPINHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("9876"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService(&config.Config{AdminPIN: "1234", AdminPINHash: string(hash), SessionSecret: "k"})

	assert.True(t, svc.CheckPIN("9876"))
	assert.False(t, svc.CheckPIN("1234"))
}

func TestTokenExpires(t *testing.T) {
	svc := NewAuthService(&config.Config{AdminPIN: "1", SessionSecret: "k", SessionTTLMinutes: 1}).(*authService)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	res, err := svc.LoginWithPIN(context.Background(), "1")
	require.NoError(t, err)
	require.NoError(t, svc.ValidateToken(res.AccessToken))

	svc.now = func() time.Time { return start.Add(2 * time.Minute) }
	assert.ErrorIs(t, svc.ValidateToken(res.AccessToken), ErrInvalidPIN)
}
