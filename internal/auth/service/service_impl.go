package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/ledgerline/invoicer/internal/auth/domain"
	"github.com/ledgerline/invoicer/internal/auth/password"
	"github.com/ledgerline/invoicer/internal/auth/token"
	"github.com/ledgerline/invoicer/internal/config"
	"github.com/ledgerline/invoicer/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const minPasswordLength = 6

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	issuer     *token.Issuer
	refreshTTL time.Duration
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		repo:  p.Repo,
		issuer: token.NewIssuer(
			p.Cfg.JWTSecret,
			p.Cfg.JWTIssuer,
			p.Cfg.JWTAudience,
			time.Duration(p.Cfg.AccessTokenMinutes)*time.Minute,
		),
		refreshTTL: time.Duration(p.Cfg.RefreshTokenDays) * 24 * time.Hour,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, domain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if !strongEnough(req.Password) {
		return nil, domain.ErrWeakPassword
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issueTokens(ctx, user, now)
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user, time.Now().UTC())
}

func (s *Service) Refresh(ctx context.Context, req domain.RefreshRequest) (*domain.AuthResult, error) {
	userID, err := s.issuer.ExpiredSubject(req.AccessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	now := time.Now().UTC()
	if user.RefreshTokenHash == nil || *user.RefreshTokenHash != hashRefreshToken(req.RefreshToken) {
		return nil, domain.ErrInvalidToken
	}
	if user.RefreshTokenExpiresAt == nil || user.RefreshTokenExpiresAt.Before(now) {
		return nil, domain.ErrRefreshTokenExpired
	}

	return s.issueTokens(ctx, user, now)
}

func (s *Service) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	userID, err := s.issuer.Subject(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !password.Verify(currentPassword, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !strongEnough(newPassword) {
		return nil, domain.ErrWeakPassword
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateFields(ctx, userID, map[string]any{
		"password_hash": hash,
		"updated_at":    now,
	}); err != nil {
		return nil, err
	}

	user.PasswordHash = hash
	user.UpdatedAt = now
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID snowflake.ID, req domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateFields(ctx, userID, map[string]any{
		"name":         name,
		"address":      req.Address,
		"phone_number": req.PhoneNumber,
		"updated_at":   now,
	}); err != nil {
		return nil, err
	}

	user.Name = name
	user.Address = req.Address
	user.PhoneNumber = req.PhoneNumber
	user.UpdatedAt = now
	return user, nil
}

// issueTokens signs a fresh access token and rotates the stored refresh token.
func (s *Service) issueTokens(ctx context.Context, user *domain.User, now time.Time) (*domain.AuthResult, error) {
	accessToken, accessExpiry, err := s.issuer.Issue(user, now)
	if err != nil {
		return nil, err
	}

	refreshToken := uuid.NewString()
	refreshHash := hashRefreshToken(refreshToken)
	refreshExpiry := now.Add(s.refreshTTL)

	if err := s.repo.UpdateFields(ctx, user.ID, map[string]any{
		"refresh_token_hash":       refreshHash,
		"refresh_token_expires_at": refreshExpiry,
	}); err != nil {
		return nil, err
	}

	user.RefreshTokenHash = &refreshHash
	user.RefreshTokenExpiresAt = &refreshExpiry

	return &domain.AuthResult{
		User:                  user,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiry,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiry,
	}, nil
}

func hashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

// strongEnough mirrors the registration password policy: minimum length plus
// at least one lowercase, one uppercase and one digit.
func strongEnough(pw string) bool {
	if len(pw) < minPasswordLength {
		return false
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
