// Package token issues and verifies the JWT access tokens used by the API.
package token

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ledgerline/invoicer/internal/auth/domain"
)

// AccessClaims are the claims embedded in access tokens.
type AccessClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and parses access tokens with a shared HMAC secret.
type Issuer struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
}

func NewIssuer(secret, issuer, audience string, accessTTL time.Duration) *Issuer {
	return &Issuer{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
	}
}

// Issue returns a signed access token for the user and its expiry.
func (i *Issuer) Issue(user *domain.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)
	claims := AccessClaims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Subject validates the token and returns the user id it was issued for.
func (i *Issuer) Subject(raw string) (snowflake.ID, error) {
	return i.parse(raw, true)
}

// ExpiredSubject extracts the user id from a token whose lifetime may have
// elapsed. The signature is still enforced; claim validation is skipped.
// Used by the refresh flow.
func (i *Issuer) ExpiredSubject(raw string) (snowflake.ID, error) {
	return i.parse(raw, false)
}

func (i *Issuer) parse(raw string, checkExpiry bool) (snowflake.ID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
	}
	if !checkExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &AccessClaims{}, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return 0, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok {
		return 0, domain.ErrInvalidToken
	}
	id, err := snowflake.ParseString(claims.Subject)
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidToken
	}
	return id, nil
}
