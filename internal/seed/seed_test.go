package seed

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/ledgerline/invoicer/internal/auth/domain"
	"github.com/ledgerline/invoicer/internal/auth/password"
	"github.com/ledgerline/invoicer/internal/config"
	"github.com/ledgerline/invoicer/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdminUser(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	cfg := config.Config{
		SeedAdminEmail:    "Admin@Test.Local",
		SeedAdminPassword: "Sup3rsafe",
	}

	require.NoError(t, EnsureAdminUser(conn, cfg, node))
	// A second run finds the account and creates nothing.
	require.NoError(t, EnsureAdminUser(conn, cfg, node))

	var users []authdomain.User
	require.NoError(t, conn.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@test.local", users[0].Email)
	assert.EqualValues(t, 3, users[0].ID.Node())
	assert.True(t, password.Verify(cfg.SeedAdminPassword, users[0].PasswordHash))
}

func TestEnsureAdminUserSkippedWithoutConfig(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&authdomain.User{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	require.NoError(t, EnsureAdminUser(conn, config.Config{}, node))

	var count int64
	require.NoError(t, conn.Model(&authdomain.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
