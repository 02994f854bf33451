package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Refresh(ctx context.Context, req RefreshRequest) (*AuthResult, error)
	Authenticate(ctx context.Context, accessToken string) (*User, error)
	ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) (*User, error)
	UpdateProfile(ctx context.Context, userID snowflake.ID, req UpdateProfileRequest) (*User, error)
}

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

type LoginRequest struct {
	Email    string
	Password string
}

// RefreshRequest carries the expired access token and the opaque refresh
// token issued alongside it.
type RefreshRequest struct {
	AccessToken  string
	RefreshToken string
}

type UpdateProfileRequest struct {
	Name        string
	Address     *string
	PhoneNumber *string
}

// AuthResult is the token pair handed to clients after register, login or
// refresh.
type AuthResult struct {
	User                  *User
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}
