package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brunovinte3/controlsst/internal/models"
	"github.com/brunovinte3/controlsst/pkg/config"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
)

type adminProfileStub struct {
	profile models.AdminProfile
	err     error
}

func (s *adminProfileStub) AdminProfile(ctx context.Context) (models.AdminProfile, error) {
	return s.profile, s.err
}

func newAuthService(t *testing.T, password string) (*AuthService, *adminProfileStub) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	stub := &adminProfileStub{profile: models.AdminProfile{Username: "admin", PasswordHash: string(hash)}}
	svc := NewAuthService(stub, nil, nil, config.JWTConfig{
		Secret:     "test_secret",
		Expiration: time.Hour,
		Issuer:     "controlsst",
	})
	return svc, stub
}

func TestLogin(t *testing.T) {
	t.Run("issues a token for valid credentials", func(t *testing.T) {
		svc, _ := newAuthService(t, "senha-segura")

		res, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "senha-segura"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.Equal(t, models.RoleAdmin, res.Role)
		assert.Equal(t, int64(3600), res.ExpiresIn)

		claims, err := svc.ValidateToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Username)
		assert.Equal(t, models.RoleAdmin, claims.Role)
		assert.Equal(t, "controlsst", claims.Issuer)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := newAuthService(t, "senha-segura")
		_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "errada"})
		assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	})

	t.Run("unknown username", func(t *testing.T) {
		svc, _ := newAuthService(t, "senha-segura")
		_, err := svc.Login(context.Background(), models.LoginRequest{Username: "intruso", Password: "senha-segura"})
		assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, _ := newAuthService(t, "senha-segura")
		_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin"})
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	})

	t.Run("profile store failure bubbles", func(t *testing.T) {
		svc, stub := newAuthService(t, "senha-segura")
		stub.err = errors.New("db down")
		_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "senha-segura"})
		require.Error(t, err)
	})
}

func TestValidateToken(t *testing.T) {
	svc, _ := newAuthService(t, "senha-segura")

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewAuthService(&adminProfileStub{profile: models.AdminProfile{Username: "admin", PasswordHash: mustHash(t, "x")}}, nil, nil, config.JWTConfig{
			Secret:     "other_secret",
			Expiration: time.Hour,
		})
		res, err := other.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "x"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(res.AccessToken)
		assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		short := NewAuthService(&adminProfileStub{profile: models.AdminProfile{Username: "admin", PasswordHash: mustHash(t, "x")}}, nil, nil, config.JWTConfig{
			Secret:     "test_secret",
			Expiration: -time.Minute,
		})
		res, err := short.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "x"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(res.AccessToken)
		assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
	})
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}
