package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ledgerline/invoicer/internal/auth/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(t *testing.T) *domain.User {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return &domain.User{ID: node.Generate(), Name: "Jordan", Email: "jordan@test.local"}
}

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("secret", "invoicer", "invoicer-api", 15*time.Minute)
	user := testUser(t)
	now := time.Now().UTC()

	raw, expiry, err := issuer.Issue(user, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(15*time.Minute), expiry, time.Second)

	id, err := issuer.Subject(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestExpiredTokenRejectedButRecoverable(t *testing.T) {
	issuer := NewIssuer("secret", "invoicer", "invoicer-api", time.Minute)
	user := testUser(t)

	raw, _, err := issuer.Issue(user, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)

	_, err = issuer.Subject(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// The refresh flow still extracts the subject from an elapsed token.
	id, err := issuer.ExpiredSubject(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := NewIssuer("secret", "invoicer", "invoicer-api", time.Minute)
	other := NewIssuer("different", "invoicer", "invoicer-api", time.Minute)
	user := testUser(t)

	raw, _, err := issuer.Issue(user, time.Now().UTC())
	require.NoError(t, err)

	_, err = other.Subject(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// A bad signature is rejected even on the lenient parse.
	_, err = other.ExpiredSubject(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
