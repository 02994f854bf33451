package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/ledgerline/invoicer/internal/auth/domain"
	"github.com/ledgerline/invoicer/internal/auth/repository"
	"github.com/ledgerline/invoicer/internal/config"
	"github.com/ledgerline/invoicer/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		Cfg: config.Config{
			JWTSecret:          "test-secret",
			JWTIssuer:          "invoicer",
			JWTAudience:        "invoicer-api",
			AccessTokenMinutes: 15,
			RefreshTokenDays:   7,
		},
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.New(conn),
	})
}

func register(t *testing.T, svc domain.Service) *domain.AuthResult {
	t.Helper()

	result, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name:     "Jordan",
		Email:    "jordan@test.local",
		Password: "Sup3rsafe",
	})
	require.NoError(t, err)
	return result
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Name: "J", Email: "j@test.local", Password: "Sup3rsafe"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Register(ctx, domain.RegisterRequest{Name: "Jordan", Email: "nope", Password: "Sup3rsafe"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	// Needs length, lower, upper and digit.
	for _, pw := range []string{"Ab1", "alllower1", "ALLUPPER1", "NoDigits"} {
		_, err = svc.Register(ctx, domain.RegisterRequest{Name: "Jordan", Email: "j@test.local", Password: pw})
		assert.ErrorIs(t, err, domain.ErrWeakPassword, pw)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name:     "Jordan Two",
		Email:    "Jordan@test.local",
		Password: "Sup3rsafe",
	})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	register(t, svc)

	_, err := svc.Login(ctx, domain.LoginRequest{Email: "jordan@test.local", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@test.local", Password: "Sup3rsafe"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	result, err := svc.Login(ctx, domain.LoginRequest{Email: "jordan@test.local", Password: "Sup3rsafe"})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)

	user, err := svc.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	first := register(t, svc)

	second, err := svc.Refresh(ctx, domain.RefreshRequest{
		AccessToken:  first.AccessToken,
		RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old refresh token is invalid after rotation.
	_, err = svc.Refresh(ctx, domain.RefreshRequest{
		AccessToken:  second.AccessToken,
		RefreshToken: first.RefreshToken,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = svc.Refresh(ctx, domain.RefreshRequest{
		AccessToken:  "garbage",
		RefreshToken: second.RefreshToken,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	result := register(t, svc)

	_, err := svc.ChangePassword(ctx, result.User.ID, "wrong", "N3wSecret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.ChangePassword(ctx, result.User.ID, "Sup3rsafe", "weak")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = svc.ChangePassword(ctx, result.User.ID, "Sup3rsafe", "N3wSecret")
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "jordan@test.local", Password: "N3wSecret"})
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	result := register(t, svc)

	address := "1 Main St"
	updated, err := svc.UpdateProfile(ctx, result.User.ID, domain.UpdateProfileRequest{
		Name:    "Jordan K",
		Address: &address,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jordan K", updated.Name)
	require.NotNil(t, updated.Address)
	assert.Equal(t, address, *updated.Address)

	_, err = svc.UpdateProfile(ctx, result.User.ID, domain.UpdateProfileRequest{Name: "J"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}
