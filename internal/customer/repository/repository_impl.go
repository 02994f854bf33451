package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/ledgerline/invoicer/internal/customer/domain"
	"github.com/ledgerline/invoicer/pkg/db"
	"github.com/ledgerline/invoicer/pkg/db/pagination"
	"gorm.io/gorm"
)

// sortColumns is the allow-list for list ordering, keyed by lowercased field
// name.
var sortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"createdat": "created_at",
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, customer *domain.Customer) error {
	return conn.WithContext(ctx).Create(customer).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.Live(conn.WithContext(ctx)).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repo) FindAll(ctx context.Context, conn *gorm.DB) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := db.Live(conn.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, req domain.ListCustomerRequest) (pagination.Page[domain.Customer], error) {
	stmt := db.Live(conn.WithContext(ctx).Model(&domain.Customer{}))
	if req.Search != "" {
		like := "%" + req.Search + "%"
		stmt = stmt.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	return pagination.Find[domain.Customer](stmt, req.Params, req.OrderClause(sortColumns))
}

func (r *repo) Update(ctx context.Context, conn *gorm.DB, customer *domain.Customer) error {
	return conn.WithContext(ctx).Save(customer).Error
}

func (r *repo) Delete(ctx context.Context, conn *gorm.DB, id snowflake.ID) error {
	return conn.WithContext(ctx).Delete(&domain.Customer{}, "id = ?", id).Error
}

func (r *repo) CountLiveInvoices(ctx context.Context, conn *gorm.DB, customerID snowflake.ID) (int64, error) {
	var count int64
	err := conn.WithContext(ctx).
		Table("invoices").
		Where("customer_id = ? AND deleted_at IS NULL", customerID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// PurgeInvoices removes every remaining invoice of the customer together with
// its rows. Called before a customer hard delete so nothing dangles.
func (r *repo) PurgeInvoices(ctx context.Context, conn *gorm.DB, customerID snowflake.ID) error {
	err := conn.WithContext(ctx).Exec(
		`DELETE FROM invoice_rows
		 WHERE invoice_id IN (SELECT id FROM invoices WHERE customer_id = ?)`,
		customerID,
	).Error
	if err != nil {
		return err
	}
	return conn.WithContext(ctx).Exec(
		`DELETE FROM invoices WHERE customer_id = ?`, customerID,
	).Error
}
