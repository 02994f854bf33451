package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/ledgerline/invoicer/internal/auth/domain"
	authrepo "github.com/ledgerline/invoicer/internal/auth/repository"
	"github.com/ledgerline/invoicer/internal/customer/domain"
	"github.com/ledgerline/invoicer/internal/customer/repository"
	invoicedomain "github.com/ledgerline/invoicer/internal/invoice/domain"
	"github.com/ledgerline/invoicer/pkg/db"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)

	err = conn.AutoMigrate(
		&authdomain.User{},
		&domain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceRow{},
	)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Users: authrepo.New(conn),
	})
	return svc, conn, node
}

func seedUser(t *testing.T, conn *gorm.DB, node *snowflake.Node) authdomain.User {
	t.Helper()

	now := time.Now().UTC()
	user := authdomain.User{
		ID:           node.Generate(),
		Name:         "Owner",
		Email:        ownerEmail(node),
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, conn.Create(&user).Error)
	return user
}

func ownerEmail(node *snowflake.Node) string {
	return "owner-" + node.Generate().String() + "@test.local"
}

func TestCreateRequiresExistingOwner(t *testing.T) {
	svc, conn, node := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:   "Acme",
		Email:  "billing@acme.test",
		UserID: node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrOwnerNotFound)

	user := seedUser(t, conn, node)
	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:   "Acme",
		Email:  "billing@acme.test",
		UserID: user.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, customer.UserID)
}

func TestCreateValidation(t *testing.T) {
	svc, conn, node := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, conn, node)

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:   "A",
		Email:  "billing@acme.test",
		UserID: user.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{
		Name:   "Acme",
		Email:  "not-an-email",
		UserID: user.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestSoftDeletedCustomerExcluded(t *testing.T) {
	svc, conn, node := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, conn, node)

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:   "Acme",
		Email:  "billing@acme.test",
		UserID: user.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, customer.ID))

	_, err = svc.GetByID(ctx, customer.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	page, err := svc.List(ctx, domain.ListCustomerRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)

	var count int64
	require.NoError(t, conn.Model(&domain.Customer{}).Where("id = ?", customer.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestHardDeleteBlockedByLiveInvoices(t *testing.T) {
	svc, conn, node := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, conn, node)

	customer, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:   "Acme",
		Email:  "billing@acme.test",
		UserID: user.ID,
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	invoice := invoicedomain.Invoice{
		ID:         node.Generate(),
		CustomerID: customer.ID,
		StartDate:  now.Add(-48 * time.Hour),
		EndDate:    now.Add(-24 * time.Hour),
		Status:     invoicedomain.InvoiceStatusCreated,
		TotalSum:   decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, conn.Create(&invoice).Error)

	assert.ErrorIs(t, svc.HardDelete(ctx, customer.ID), domain.ErrHasInvoices)

	// A tombstoned invoice no longer blocks the delete and is purged with the
	// customer.
	require.NoError(t, conn.Model(&invoicedomain.Invoice{}).
		Where("id = ?", invoice.ID).
		Update("deleted_at", now).Error)

	require.NoError(t, svc.HardDelete(ctx, customer.ID))

	var customers, invoices int64
	require.NoError(t, conn.Model(&domain.Customer{}).Count(&customers).Error)
	require.NoError(t, conn.Model(&invoicedomain.Invoice{}).Count(&invoices).Error)
	assert.Zero(t, customers)
	assert.Zero(t, invoices)
}

func TestListSearchSortAndPaging(t *testing.T) {
	svc, conn, node := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, conn, node)

	names := []string{"Alpha", "Beta", "Gamma", "Delta"}
	for _, name := range names {
		_, err := svc.Create(ctx, domain.CreateCustomerRequest{
			Name:   name,
			Email:  name + "@test.local",
			UserID: user.ID,
		})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, domain.ListCustomerRequest{
		Params: pagination.Params{Search: "ALPHA"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.TotalCount)
	assert.Equal(t, "Alpha", page.Items[0].Name)

	page, err = svc.List(ctx, domain.ListCustomerRequest{
		Params: pagination.Params{Sort: "name", SortDirection: "asc", PageSize: 3},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Alpha", page.Items[0].Name)
	assert.Equal(t, "Beta", page.Items[1].Name)

	// Unknown sort direction falls back to ascending.
	fallback, err := svc.List(ctx, domain.ListCustomerRequest{
		Params: pagination.Params{Sort: "name", SortDirection: "xyz", PageSize: 3},
	})
	require.NoError(t, err)
	require.Len(t, fallback.Items, 3)
	assert.Equal(t, "Alpha", fallback.Items[0].Name)
}
