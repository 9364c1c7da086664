package auth_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/acmebank/pkg/config"
	authsvc "github.com/amirasaad/acmebank/pkg/service/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBank map[string]string

func (b fakeBank) Authenticate(_ context.Context, id, password string) bool {
	pw, ok := b[id]
	return ok && pw == password
}

var (
	bank   = fakeBank{"10001": "Str0ng!Pass"}
	jwtCfg = &config.Jwt{Secret: "test-secret", Expiry: time.Hour}
)

func parse(t *testing.T, signed string) *jwt.Token {
	t.Helper()
	token, err := jwt.Parse(signed, func(*jwt.Token) (any, error) { return []byte(jwtCfg.Secret), nil })
	require.NoError(t, err)
	return token
}

func TestJWT_LoginAndToken(t *testing.T) {
	t.Parallel()
	s := authsvc.NewWithJWT(bank, jwtCfg, slog.Default())
	ctx := context.Background()

	id, err := s.Login(ctx, "10001", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, "10001", id)

	signed, err := s.GenerateToken(ctx, id)
	require.NoError(t, err)

	token := parse(t, signed)
	got, err := s.GetCurrentAccountID(token)
	require.NoError(t, err)
	assert.Equal(t, "10001", got)

	exp, err := token.Claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}

func TestJWT_LoginRejected(t *testing.T) {
	t.Parallel()
	s := authsvc.NewWithJWT(bank, jwtCfg, slog.Default())
	ctx := context.Background()

	for _, tc := range []struct{ id, pw string }{
		{"10001", "wrong"},
		{"10002", "Str0ng!Pass"},
		{"", ""},
	} {
		_, err := s.Login(ctx, tc.id, tc.pw)
		require.ErrorIs(t, err, authsvc.ErrUnauthorized)
	}
}

func TestJWT_MissingSecret(t *testing.T) {
	t.Parallel()
	s := authsvc.NewWithJWT(bank, &config.Jwt{}, slog.Default())
	_, err := s.GenerateToken(context.Background(), "10001")
	require.ErrorIs(t, err, authsvc.ErrMissingSecret)
}

func TestJWT_CurrentAccountIDFromBadClaims(t *testing.T) {
	t.Parallel()
	s := authsvc.NewWithJWT(bank, jwtCfg, slog.Default())

	_, err := s.GetCurrentAccountID(nil)
	require.ErrorIs(t, err, authsvc.ErrUnauthorized)

	_, err = s.GetCurrentAccountID(jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"account_id": 10001}))
	require.ErrorIs(t, err, authsvc.ErrUnauthorized)

	_, err = s.GetCurrentAccountID(jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "10001"}))
	require.ErrorIs(t, err, authsvc.ErrUnauthorized)
}

func TestBasic(t *testing.T) {
	t.Parallel()
	s := authsvc.NewWithBasic(bank, slog.Default())
	ctx := context.Background()

	id, err := s.Login(ctx, "10001", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, "10001", id)

	_, err = s.Login(ctx, "10001", "nope")
	require.ErrorIs(t, err, authsvc.ErrUnauthorized)

	token, err := s.GenerateToken(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, token)
}
